package chunking

import "errors"

// ErrStructureNotDetected reports that no chapter or section headers were
// found. It is a recoverable signal: the caller is expected to run fallback
// segmentation instead of surfacing it.
var ErrStructureNotDetected = errors.New("document structure not detected")
