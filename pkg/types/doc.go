/*
Package types defines the value types shared across mdvault's components.

FileKey and FileState are the identity and version stamp every other
component (scanner, pipeline, store, read interface) is built around; this
package keeps them dependency-free so none of the layers above it need to
import each other just to talk about a file.
*/
package types
