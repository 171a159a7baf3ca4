// Package core validates time/position/force recordings and turns them into
// chart scenes.
//
// This package holds all domain logic independent of any UI or transport
// layer. It is used by the web handlers and the render command alike.
//
// # Pipeline
//
// A file flows through the package in one direction:
//
//  1. [ReadSource] checks the extension and decodes the bytes as UTF-8
//  2. [Parse] tokenizes lines with [Tokenize] and validates them into a [ParsedFile]
//  3. [ExtractMetadata] lifts key/value pairs from the first data row
//  4. [Session.Add] gives the file an ID and a palette color
//  5. [BuildScene] runs [DetectRegions] on every visible dataset
//
// [LoadBatch] runs steps 1-4 for many files at once, and [Controller] wraps
// batches and the other user commands so that each ends in exactly one render.
//
// # Input format
//
// Comma-separated, first line is the header:
//
//	Time,Position,Force[,Flag[,Metadata...]]
//
// Fields may be wrapped in double quotes to protect commas. Numbers are
// strict decimals with an optional sign and exponent: trailing units such as
// "12 N" and hex floats are rejected rather than truncated. Flag cells must
// be 0 or 1 when any row fills them. Metadata is read from the first data
// row only.
//
// # Error Handling
//
// Every failure matches one sentinel with errors.Is ([ErrInvalidNumber],
// [ErrUnsupportedFileType], ...). [MapError] turns any error into a
// [UserMessage] with a support code:
//
//   - VAL001-VAL006: Content validation
//   - FILE001-FILE004: File type, size and read problems
//   - DS001-DS002: Dataset commands
//   - UPL001-UPL003: Upload throttling, cancellation and timeouts
package core
