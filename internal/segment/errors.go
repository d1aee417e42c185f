package segment

import "errors"

// ErrMalformedInput is returned when a document has no content after
// whitespace trimming. It aborts processing of that document only; callers
// continue with the rest of the batch.
//
// Design decision: We use a package-level sentinel error rather than a
// custom error type because callers only need errors.Is to distinguish
// malformed documents from I/O failures; the document path is attached by
// wrapping.
var ErrMalformedInput = errors.New("document is empty after whitespace trimming")
