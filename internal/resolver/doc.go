// Package resolver turns a free-text track query into a local audio file.
//
// [Resolver.Resolve] is idempotent on the destination path: if the file exists nothing else happens.
// New downloads go through a per-track staging directory and are renamed into place only after the
// [Downloader] finished and the [Tagger] wrote its frames, so an interrupted run never leaves a
// truncated file where the existence check would accept it.
//
// [YTDLP] drives yt-dlp via github.com/lrstanley/go-ytdlp, searching with "ytsearch1:" and
// extracting 192K MP3 audio. [ID3Tagger] uses github.com/bogem/id3v2.
//
// Failures never escape as errors; they are reported in [Result.Err] wrapping one of
// [shared.ErrNoResults], [shared.ErrDownloadFailed] or [shared.ErrTagFailed].
package resolver
