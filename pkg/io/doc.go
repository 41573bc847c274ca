// Package io reads and writes the JSON documents the command line tools work
// with: project bundles, single canvas tokens and project exports.
//
// # Bundle Format
//
// A bundle holds a whole project:
//
//	{
//	  "name": "game",
//	  "nextShallowId": 12,
//	  "containers": [
//	    {"id": "8d7c...", "shallowId": 3, "name": "Root", "token": {...}}
//	  ],
//	  "assets": [{"shallowId": 1, "name": "Hero", "properties": [...]}],
//	  "groups": [{"id": 2, "name": "Enemies", "members": [5, 6]}]
//	}
//
// Container tokens use the canvas token format documented in package token.
// Property values are normalized on decode, so a color written as a bare hex
// string reads back as a color value. Portal values are normalized when the
// token is opened on a canvas.
//
// # Import
//
// Use [ImportBundle] to read a bundle from a file path, or [ReadBundle] to
// read from any io.Reader:
//
//	b, err := io.ImportBundle("game.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Decoding errors carry the INVALID_FORMAT code; a missing file carries
// NOT_FOUND.
//
// # Export
//
// [WriteBundle] and [WriteExport] encode with the indentation given in
// [Options]. [ExportBundle] and [ExportFile] write to a file path, replacing
// the file only once encoding succeeded.
package io
