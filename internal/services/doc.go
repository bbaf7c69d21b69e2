// Package services implements the provider clients behind a sync run.
//
// # Interfaces
//
// [CatalogSource] lists liked tracks and [VideoPlatform] searches and inserts videos.
// Both are small so the sync driver can be tested against in-memory fakes.
//
// # Spotify
//
// [SpotifyService] pages through /v1/me/tracks with an [oauth2] client. Expired tokens are refreshed
// by the transport and reported through SetTokenRefreshCallback so the CLI can persist them.
//
// # YouTube
//
// [YouTubeService] uses the generated YouTube Data API v3 client. Credentials come from a Google
// "installed app" client secret file and the youtube.force-ssl scope.
//
// [YTMusicService] communicates with the FastAPI proxy server wrapping ytmusicapi.
// The auth_file path is sent via X-Auth-File header on each request.
//
// # Error Handling
//
// Services use sentinel errors from the shared package:
//   - [shared.ErrNotAuthenticated] : no token or auth file configured
//   - [shared.ErrTokenExpired] : OAuth token rejected or refresh failed, reauthorization needed
//   - [shared.ErrQuotaExceeded] : provider quota or rate limit hit
//   - [shared.ErrAPIRequest] : any other failed request
package services
