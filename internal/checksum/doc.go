// Package checksum computes MD5 content digests for delivery files.
//
// MD5 is not a security choice: receiving sites validate deliveries with
// plain md5sum -c, so the digest format is part of the external contract.
// The pool digests independent files concurrently and aggregates all
// failures instead of stopping at the first one, keeping verification
// reports complete.
package checksum
