// Package model defines the domain types and value objects for the
// npm-otp-publish CLI.
//
// This package contains pure data structures and validation rules:
// PackageIdentity, PublishConfig and its provenance/access policy, the
// AccessLevel enum and the scoped package name predicate.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
