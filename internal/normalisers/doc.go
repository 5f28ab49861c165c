// Package normalisers provides one DocumentLoader per supported document
// kind. Each loader discovers its files under a source directory and
// extracts their text into domain.Document values ready for chunking.
package normalisers
