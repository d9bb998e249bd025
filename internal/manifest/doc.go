// Package manifest produces and parses the .lst/.md5 manifest pairs that
// accompany a delivery tree. The .lst half lists relative paths, one per
// line; the .md5 half records "<hexdigest>  <path>" lines in md5sum layout.
// Both halves are emitted in lexicographic path order, which makes repeated
// builds over unchanged data byte-identical and lets the pair be compared
// entry by entry.
package manifest
