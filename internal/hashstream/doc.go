// Package hashstream reads a byte stream once and produces its size and
// (md5, sha1, sha256) digests in a single pass.
package hashstream
