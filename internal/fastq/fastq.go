package fastq

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Suffix is the mandatory extension for raw read files.
const Suffix = ".fastq.gz"

// ErrUnparseable marks filenames under a flowcell folder that do not match
// the delivery naming grammar. Stale or extra files are common in practice,
// so callers surface these as warnings listing the offending path rather
// than skipping silently.
var ErrUnparseable = errors.New("filename does not match FASTQ naming grammar")

// Name is the parsed form of a raw read filename,
// <Sample>_<BCLConversion>_<Lane>_<Read>_<Volume>.fastq.gz.
type Name struct {
	// Sample is the sample identifier. It may itself contain underscores.
	Sample string
	// BCLConversion identifies the BCL conversion run that produced the file.
	BCLConversion int
	// Lane is the flowcell lane number.
	Lane int
	// Read is the read number within the pair (1 or 2).
	Read int
	// Volume distinguishes multiple files of the same sample, lane and read.
	Volume int
}

// Parse validates name against the grammar and returns its components.
// The sample identifier is whatever precedes the last four underscore-separated
// numeric tokens, so underscores inside sample names are preserved.
func Parse(name string) (Name, error) {
	base, ok := strings.CutSuffix(name, Suffix)
	if !ok {
		return Name{}, fmt.Errorf("%w: %q: missing %s suffix", ErrUnparseable, name, Suffix)
	}

	tokens := strings.Split(base, "_")
	if len(tokens) < 5 {
		return Name{}, fmt.Errorf("%w: %q: expected at least 5 underscore-separated tokens", ErrUnparseable, name)
	}

	numeric := tokens[len(tokens)-4:]

	values := make([]int, 0, len(numeric))
	for _, token := range numeric {
		value, err := strconv.Atoi(token)
		if err != nil || value <= 0 {
			return Name{}, fmt.Errorf("%w: %q: token %q is not a positive number", ErrUnparseable, name, token)
		}

		values = append(values, value)
	}

	if values[2] != 1 && values[2] != 2 {
		return Name{}, fmt.Errorf("%w: %q: read number must be 1 or 2", ErrUnparseable, name)
	}

	sample := strings.Join(tokens[:len(tokens)-4], "_")
	if sample == "" {
		return Name{}, fmt.Errorf("%w: %q: empty sample component", ErrUnparseable, name)
	}

	return Name{
		Sample:        sample,
		BCLConversion: values[0],
		Lane:          values[1],
		Read:          values[2],
		Volume:        values[3],
	}, nil
}

// String renders the canonical filename for the parsed components.
func (n Name) String() string {
	return fmt.Sprintf("%s_%d_%d_%d_%d%s", n.Sample, n.BCLConversion, n.Lane, n.Read, n.Volume, Suffix)
}

// IsFASTQ reports whether name looks like a raw read file by extension alone.
// Raw data is excluded from project-wide manifest scopes on this basis even
// when the full grammar does not parse.
func IsFASTQ(name string) bool {
	return strings.HasSuffix(name, Suffix)
}
