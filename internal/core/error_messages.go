package core

// error_messages.go maps errors to user-facing messages with support codes.
//
// # Error Codes Reference
//
// Validation errors (VAL001-VAL099), reported per file:
//
//	VAL001 - Too few columns: header has fewer than Time, Position, Force
//	VAL002 - Empty file: no header or no data row
//	VAL003 - No data rows: only blank lines follow the header
//	VAL004 - Missing value: a Time/Position/Force cell is empty
//	VAL005 - Invalid number: a Time/Position/Force cell is not a number
//	VAL006 - Invalid flag: column 4 holds something other than 0 or 1
//
// File errors (FILE001-FILE099):
//
//	FILE001 - Unsupported file type: only .csv files are accepted
//	FILE002 - File too large: exceeds the configured size limit
//	FILE003 - Read failure: the file could not be read
//	FILE004 - No file: the request carried no files
//
// Dataset errors (DS001-DS099):
//
//	DS001 - Dataset not found: the dataset was removed or never existed
//	DS002 - Invalid color: color is not a #rgb or #rrggbb value
//
// Upload errors (UPL001-UPL099):
//
//	UPL001 - System busy: too many uploads in progress
//	UPL002 - Request cancelled
//	UPL003 - Request timeout
//
// ERR000 is the fallback when nothing matches; the technical error is in
// the server log.
//
// Known sentinel errors are matched with errors.Is first, in table order.
// Errors from outside this package (HTTP layer, context) fall back to
// case-insensitive substring patterns.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
	Detail  string // Where it happened, for validation errors
}

// errorTarget maps a sentinel error to its message.
type errorTarget struct {
	target error
	msg    UserMessage
}

// errorPattern maps a lowercase substring to its message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// ErrNoFiles is returned by front-ends when a request or command line
// carried no files.
var ErrNoFiles = errors.New("no file provided")

// errorTargets is checked before errorPatterns. ErrFileTooLarge precedes
// ErrReadFailure because it is wrapped inside it.
var errorTargets = []errorTarget{
	{ErrTooFewColumns, UserMessage{
		Message: "CSV file must contain at least 3 columns (Time, Position, Force)",
		Action:  "Check that the header row lists Time, Position and Force",
		Code:    "VAL001",
	}},
	{ErrEmptyOrHeaderOnly, UserMessage{
		Message: "CSV file must contain at least a header row and one data row",
		Action:  "Please upload a CSV file with data rows",
		Code:    "VAL002",
	}},
	{ErrNoDataRows, UserMessage{
		Message: "CSV file contains no data rows",
		Action:  "Please upload a CSV file with data rows",
		Code:    "VAL003",
	}},
	{ErrMissingValue, UserMessage{
		Message: "A required value is missing",
		Action:  "Fill in Time, Position and Force on every row",
		Code:    "VAL004",
	}},
	{ErrInvalidNumber, UserMessage{
		Message: "Invalid numeric value",
		Action:  "Use plain decimal numbers without units or thousands separators",
		Code:    "VAL005",
	}},
	{ErrInvalidFlag, UserMessage{
		Message: "Column 4 must contain only 0 or 1 values",
		Action:  "Use 1 while the process is active and 0 otherwise",
		Code:    "VAL006",
	}},
	{ErrUnsupportedFileType, UserMessage{
		Message: "Please upload a CSV file",
		Action:  "Only files ending in .csv are accepted",
		Code:    "FILE001",
	}},
	{ErrFileTooLarge, UserMessage{
		Message: "File exceeds maximum size limit",
		Action:  "Split the recording into smaller files",
		Code:    "FILE002",
	}},
	{ErrReadFailure, UserMessage{
		Message: "Error reading file",
		Action:  "Please try again",
		Code:    "FILE003",
	}},
	{ErrNoFiles, UserMessage{
		Message: "No file was selected",
		Action:  "Please select one or more CSV files",
		Code:    "FILE004",
	}},
	{ErrDatasetNotFound, UserMessage{
		Message: "File not found",
		Action:  "It may have been removed; reload the page",
		Code:    "DS001",
	}},
	{ErrInvalidColor, UserMessage{
		Message: "Invalid color",
		Action:  "Use a hex color such as #1f77b4",
		Code:    "DS002",
	}},
	{ErrTooManyUploads, UserMessage{
		Message: "Too many uploads in progress",
		Action:  "Please wait a moment and try again",
		Code:    "UPL001",
	}},
	{context.Canceled, UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL002",
	}},
	{context.DeadlineExceeded, UserMessage{
		Message: "Request timed out",
		Action:  "Try fewer or smaller files",
		Code:    "UPL003",
	}},
}

// errorPatterns covers errors that do not wrap a known sentinel.
var errorPatterns = []errorPattern{
	{"request body too large", UserMessage{
		Message: "File exceeds maximum size limit",
		Action:  "Split the recording into smaller files",
		Code:    "FILE002",
	}},
	{"multipart", UserMessage{
		Message: "Upload could not be read",
		Action:  "Please select the files again",
		Code:    "FILE003",
	}},
	{"context canceled", UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL002",
	}},
	{"deadline exceeded", UserMessage{
		Message: "Request timed out",
		Action:  "Try fewer or smaller files",
		Code:    "UPL003",
	}},
}

// defaultMessage is returned when no target or pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to a user-friendly message. Validation errors
// carry their row/column position in Detail.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	msg := defaultMessage
	matched := false
	for _, et := range errorTargets {
		if errors.Is(err, et.target) {
			msg, matched = et.msg, true
			break
		}
	}
	if !matched {
		errStr := strings.ToLower(err.Error())
		for _, ep := range errorPatterns {
			if strings.Contains(errStr, ep.pattern) {
				msg = ep.msg
				break
			}
		}
	}

	var ve *ValidationError
	if errors.As(err, &ve) && ve.Row > 0 {
		msg.Detail = ve.Error()
	}
	return msg
}

// FormatUserError creates a formatted error string for display.
// The format is "Message (Code: XXX). Action", or
// "Message (Code: XXX): Detail. Action" for positioned validation errors.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	if msg.Detail != "" {
		return fmt.Sprintf("%s (Code: %s): %s. %s", msg.Message, msg.Code, msg.Detail, msg.Action)
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
