// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package errors provides structured error handling for the codectx CLI.
//
// This package defines UserError, a type that carries structured error information
// including what went wrong, why it happened, and how to fix it. It also defines
// consistent exit codes for different error categories, aligned with the error
// kinds used throughout the retrieval/ingest/patch core (InvalidRequest, NotFound,
// Unauthorized, UpstreamUnavailable, PatchInvalid, Conflict, Internal).
//
// # Usage Example
//
// Creating and displaying errors:
//
//	err := errors.NewConfigError(
//	    "Cannot load codectx configuration",
//	    "The config file .codectx/config.yaml is missing",
//	    "Run: codectx init",
//	    underlyingErr,
//	)
//	if err != nil {
//	    // Simple approach: print and exit with colored output
//	    errors.FatalError(err, false)
//	}
//
// # Formatted Output
//
// The Format() method provides colored terminal output:
//
//	err := errors.NewDatabaseError(
//	    "Cannot open the repository index",
//	    "The index metadata file is locked by another process",
//	    "Wait for the other codectx process to finish or remove its lock file",
//	    underlyingErr,
//	)
//	fmt.Fprint(os.Stderr, err.Format(false))
//	// Output (with colors):
//	// Error: Cannot open the repository index
//	// Cause: The index metadata file is locked by another process
//	// Fix:   Wait for the other codectx process to finish or remove its lock file
//
// For JSON output:
//
//	jsonData := err.ToJSON()
//	json.NewEncoder(os.Stderr).Encode(jsonData)
//	// Output:
//	// {
//	//   "error": "Cannot open the repository index",
//	//   "cause": "The index metadata file is locked by another process",
//	//   "fix": "Wait for the other codectx process to finish or remove its lock file",
//	//   "exit_code": 2
//	// }
//
// # Exit Codes
//
// The package defines semantic exit codes following Unix conventions:
//   - ExitSuccess (0): Successful execution
//   - ExitConfig (1): Configuration errors (missing/invalid config)
//   - ExitDatabase (2): Index/persistence errors (locked, corrupted, etc.)
//   - ExitNetwork (3): Upstream errors (vector store, LLM gateway, git host, subprocess)
//   - ExitInput (4): Invalid user input (bad arguments, validation errors)
//   - ExitPermission (5): Permission denied (file access, etc.)
//   - ExitNotFound (6): Resource not found (repo, job, entity)
//   - ExitUnauthorized (7): Missing or invalid bearer token
//   - ExitConflict (8): Concurrent index attempt, duplicate repo id
//   - ExitPatch (9): Patch rejected by the validator
//   - ExitInternal (10): Internal errors (bugs, panics)
package errors

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Exit codes for different error categories.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitConfig indicates configuration errors (missing/invalid config files).
	ExitConfig = 1

	// ExitDatabase indicates index/persistence errors (file locked, corrupted, etc.).
	ExitDatabase = 2

	// ExitNetwork indicates an UpstreamUnavailable error: a vector store,
	// LLM gateway, git host, or subprocess call failed.
	ExitNetwork = 3

	// ExitInput indicates an InvalidRequest error (bad arguments, validation errors).
	ExitInput = 4

	// ExitPermission indicates permission denied errors (file access, etc.).
	ExitPermission = 5

	// ExitNotFound indicates a NotFound error (repo, job, or entity absent).
	ExitNotFound = 6

	// ExitUnauthorized indicates a missing or invalid bearer token.
	ExitUnauthorized = 7

	// ExitConflict indicates a concurrent index attempt for the same repo,
	// or a duplicate repo id.
	ExitConflict = 8

	// ExitPatch indicates a PatchInvalid error: the patch validator rejected
	// the submitted diff.
	ExitPatch = 9

	// ExitInternal indicates an internal error (bugs, unexpected panics).
	// Exit code 10 signals "this is a bug that should be reported".
	ExitInternal = 10
)

// UserError represents an error with structured context for end users.
//
// It provides three levels of information:
//   - Message: What went wrong (user-facing error description)
//   - Cause: Why it happened (diagnostic information)
//   - Fix: How to fix it (actionable suggestion)
//
// UserError also carries an exit code for consistent CLI exit behavior
// and optionally wraps an underlying error for error chain compatibility.
type UserError struct {
	// Message describes what went wrong in user-friendly language.
	Message string

	// Cause explains why the error occurred (diagnostic information).
	Cause string

	// Fix provides an actionable suggestion on how to resolve the error.
	Fix string

	// ExitCode is the exit code that should be used when exiting due to this error.
	ExitCode int

	// Issues lists individual validation failures, used by PatchInvalid
	// errors to surface every rule the patch violated rather than a
	// single message. Empty for every other error kind.
	Issues []string

	// Err is the underlying error that caused this error (optional).
	// This enables error wrapping and compatibility with errors.Is/As.
	Err error
}

// Error implements the error interface.
//
// It returns a simple error message string. If an underlying error is present,
// it appends that error's message for context.
func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements error unwrapping for compatibility with errors.Is and errors.As.
//
// It returns the underlying error, allowing standard library error inspection
// functions to work with error chains.
func (e *UserError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a configuration error with exit code ExitConfig.
//
// Use this for errors related to missing, invalid, or malformed configuration files.
//
// Example:
//
//	return NewConfigError(
//	    "Cannot load codectx configuration",
//	    "The config file .codectx/config.yaml is missing",
//	    "Run 'codectx init' to create a new configuration",
//	    nil,
//	)
func NewConfigError(msg, cause, fix string, err error) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitConfig,
		Err:      err,
	}
}

// NewDatabaseError creates an index/persistence error with exit code ExitDatabase.
//
// Use this for errors related to the repository index or its metadata store,
// such as locked files, corruption, or failed atomic writes.
//
// Example:
//
//	return NewDatabaseError(
//	    "Cannot open the repository index",
//	    "The index metadata file is locked by another process",
//	    "Wait for the other codectx process to finish or remove its lock file",
//	    err,
//	)
func NewDatabaseError(msg, cause, fix string, err error) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitDatabase,
		Err:      err,
	}
}

// NewNetworkError creates an UpstreamUnavailable error with exit code ExitNetwork.
//
// Use this for errors related to the vector store, the LLM gateway, the git
// host, or a subprocess invocation (git, tree-sitter tooling).
//
// Example:
//
//	return NewNetworkError(
//	    "Cannot connect to embedding provider",
//	    "Connection timed out after 30 seconds",
//	    "Check your network connection and try again",
//	    err,
//	)
func NewNetworkError(msg, cause, fix string, err error) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitNetwork,
		Err:      err,
	}
}

// NewInputError creates an InvalidRequest error with exit code ExitInput.
//
// Use this for errors related to invalid user input, such as bad command-line
// arguments or failed validation checks. Input errors typically do not wrap
// an underlying error.
//
// Example:
//
//	return NewInputError(
//	    "Invalid retrieval mode",
//	    "retrieval_mode must be one of vector, callgraph, slice",
//	    "Pass --mode vector, --mode callgraph, or --mode slice",
//	)
func NewInputError(msg, cause, fix string) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitInput,
		Err:      nil, // Input errors typically don't wrap underlying errors
	}
}

// NewPermissionError creates a permission denied error with exit code ExitPermission.
//
// Use this for errors related to insufficient permissions, such as file access
// or operation authorization failures.
//
// Example:
//
//	return NewPermissionError(
//	    "Cannot write to index directory",
//	    "Permission denied for .codectx/index/",
//	    "Run with appropriate permissions or change the index directory",
//	    err,
//	)
func NewPermissionError(msg, cause, fix string, err error) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitPermission,
		Err:      err,
	}
}

// NewNotFoundError creates a NotFound error with exit code ExitNotFound.
//
// Use this for errors when a requested resource (repo, job, entity) cannot
// be found. Not found errors typically do not wrap an underlying error.
//
// Example:
//
//	return NewNotFoundError(
//	    "Repository not found",
//	    "No repository named 'myrepo' exists in the index",
//	    "Run 'codectx status' to list indexed repositories",
//	)
func NewNotFoundError(msg, cause, fix string) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitNotFound,
		Err:      nil, // Not found errors typically don't wrap underlying errors
	}
}

// NewUnauthorizedError creates an Unauthorized error with exit code ExitUnauthorized.
//
// Use this when a request carries a missing or invalid bearer token and
// authentication is required.
//
// Example:
//
//	return NewUnauthorizedError(
//	    "Missing bearer token",
//	    "This codectx instance requires authentication",
//	    "Set CODECTX_TOKEN or pass --token",
//	)
func NewUnauthorizedError(msg, cause, fix string) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitUnauthorized,
		Err:      nil,
	}
}

// NewConflictError creates a Conflict error with exit code ExitConflict.
//
// Use this for a concurrent index attempt against a repo that already has
// an active job, or a duplicate repo id.
//
// Example:
//
//	return NewConflictError(
//	    "Index already running",
//	    "Repository 'myrepo' has an active index job",
//	    "Wait for the current job to finish, or check 'codectx status'",
//	    nil,
//	)
func NewConflictError(msg, cause, fix string, err error) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitConflict,
		Err:      err,
	}
}

// NewPatchError creates a PatchInvalid error with exit code ExitPatch,
// carrying the validator's full issue list alongside the summary message.
//
// Example:
//
//	return NewPatchError(
//	    "Patch rejected by validator",
//	    "The diff violates one or more safety rules",
//	    "Inspect the issues list and resubmit a corrected diff",
//	    issues,
//	)
func NewPatchError(msg, cause, fix string, issues []string) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitPatch,
		Issues:   issues,
	}
}

// NewInternalError creates an internal error with exit code ExitInternal.
//
// Use this for unexpected errors that indicate bugs in the program, such as
// assertion failures, unexpected nil values, or unhandled error cases.
// Internal errors should be reported to the maintainers.
//
// Example:
//
//	return NewInternalError(
//	    "Unexpected nil pointer",
//	    "The retriever returned nil unexpectedly",
//	    "This is a bug. Please report it at github.com/kraklabs/codectx/issues",
//	    err,
//	)
func NewInternalError(msg, cause, fix string, err error) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: ExitInternal,
		Err:      err,
	}
}

// Color definitions for error formatting.
var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format returns a formatted error message for terminal display.
//
// The output includes colored sections for Error (red/bold), Cause (yellow),
// and Fix (green). Color output respects the NO_COLOR environment variable
// and can be explicitly disabled with the noColor parameter.
//
// Example output:
//
//	Error: Cannot open the repository index
//	Cause: The index metadata file is locked by another process
//	Fix:   Wait for the other codectx process to finish or remove its lock file
//
// Empty Cause or Fix fields are omitted from the output. A non-empty Issues
// list (PatchInvalid errors) is rendered as a bullet list after Fix.
//
// Note: This method temporarily modifies the global color.NoColor state
// and restores it after formatting to ensure thread safety.
func (e *UserError) Format(noColor bool) string {
	// Save and restore global color state to avoid side effects
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()

	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprint("Error: "))
	out.WriteString(e.Message)
	out.WriteString("\n")

	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}

	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}

	for _, issue := range e.Issues {
		out.WriteString("  - ")
		out.WriteString(issue)
		out.WriteString("\n")
	}

	return out.String()
}

// ErrorJSON represents error information in JSON format.
//
// This structure is suitable for machine consumption and integrates with
// CLI commands that support --json output mode.
type ErrorJSON struct {
	Error    string   `json:"error"`
	Cause    string   `json:"cause,omitempty"`
	Fix      string   `json:"fix,omitempty"`
	Issues   []string `json:"issues,omitempty"`
	ExitCode int      `json:"exit_code"`
}

// ToJSON converts the UserError to a JSON-serializable structure.
//
// Fields with empty values (Cause, Fix, Issues) are omitted from JSON output
// using the omitempty tag. This keeps JSON output clean when additional
// context is not available.
func (e *UserError) ToJSON() ErrorJSON {
	return ErrorJSON{
		Error:    e.Message,
		Cause:    e.Cause,
		Fix:      e.Fix,
		Issues:   e.Issues,
		ExitCode: e.ExitCode,
	}
}

// FatalError prints the error and exits with the appropriate code.
//
// If the error is a UserError, it uses Format() for colored output or
// ToJSON() for JSON mode. For non-UserError types, it prints a simple
// error message and exits with ExitInternal.
//
// This function never returns - it always calls os.Exit().
//
// Usage:
//
//	if err := doSomething(); err != nil {
//	    errors.FatalError(err, jsonMode)
//	}
func FatalError(err error, jsonOutput bool) {
	if err == nil {
		return
	}

	if ue, ok := err.(*UserError); ok {
		if jsonOutput {
			enc := json.NewEncoder(os.Stderr)
			enc.SetIndent("", "  ")
			// Encode error is intentionally ignored since we're about to exit.
			// If JSON encoding fails, the program will still exit with the correct code.
			_ = enc.Encode(ue.ToJSON())
		} else {
			fmt.Fprint(os.Stderr, ue.Format(false))
		}
		os.Exit(ue.ExitCode)
	}

	// Fallback for non-UserError
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(ExitInternal)
}
