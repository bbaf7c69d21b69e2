// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand creates the config file and the sqlite schema
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create configuration and state storage",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config file from the embedded template",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the sqlite state database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand runs the OAuth flows and reports stored credentials
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize Spotify and YouTube",
		Commands: []*cli.Command{
			{
				Name:   "spotify",
				Usage:  "Authenticate with Spotify using OAuth2",
				Action: r.AuthSpotify,
			},
			{
				Name:   "youtube",
				Usage:  "Authenticate with YouTube (Data API OAuth2, or proxy health check for ytmusic)",
				Action: r.AuthYouTube,
			},
			{
				Name:  "status",
				Usage: "Show stored credentials",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

// spotifyCommand handles Spotify operations
func spotifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Spotify library operations",
		Commands: []*cli.Command{
			{
				Name:  "likes",
				Usage: "List liked songs, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of tracks to return (0 for all)",
						Value: 50,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.SpotifyLikes,
			},
		},
	}
}

// youtubeCommand handles destination operations
func youtubeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "youtube",
		Aliases: []string{"yt"},
		Usage:   "YouTube search and playlist operations",
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Show the best video match for a query",
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.YouTubeSearch,
			},
			{
				Name:  "add",
				Usage: "Append a video to a playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "video-id",
						Usage:    "Video ID to add",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "playlist-id",
						Usage: "Target playlist (defaults to destination.playlist_id)",
					},
				},
				Action: r.YouTubeAdd,
			},
		},
	}
}

// syncCommand runs the liked songs sync
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Sync liked songs into the destination playlist",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Process liked songs added since the last run",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "playlist-id",
						Usage: "Target playlist (defaults to destination.playlist_id)",
					},
					&cli.StringFlag{
						Name:  "policy",
						Usage: "Cursor policy: on-match, on-insert or always (defaults to sync.cursor_policy)",
					},
					&cli.BoolFlag{
						Name:  "tui",
						Usage: "Show the interactive sync monitor",
					},
					&cli.StringFlag{
						Name:    "report",
						Aliases: []string{"o"},
						Usage:   "Write the run report to this path",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Report format (json, csv, markdown, txt)",
					},
				},
				Action: r.SyncRun,
			},
		},
	}
}

// stateCommand inspects and migrates the sync state
func stateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "state",
		Usage: "Inspect sync state",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the cursor, dedup count and recent runs",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.IntFlag{
						Name:  "runs",
						Usage: "Number of recent runs to list (sqlite backend)",
						Value: 5,
					},
				},
				Action: r.StateShow,
			},
			{
				Name:  "copy",
				Usage: "Copy the cursor and dedup set into another backend",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "to",
						Usage:    "Destination backend (file, sqlite, badger)",
						Required: true,
					},
				},
				Action: r.StateCopy,
			},
		},
	}
}
