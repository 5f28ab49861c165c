// Package connectors provides the sources documents are discovered in.
// The filesystem connector walks the configured source directory and
// classifies files by DocumentKind for the loaders.
package connectors
