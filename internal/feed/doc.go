// Package feed renders the archive as an RSS 2.0 document and an extended M3U8 playlist.
//
// Both outputs are rebuilt from scratch on every run from the full playlist entry list. Each
// non-nil entry produces exactly one item pointing at the URL where its audio file is expected
// to be served, whether or not that file was downloaded this run. All items share one
// publication time taken from the injected clock.
package feed
