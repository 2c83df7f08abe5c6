// Package llm drives the text-generation backend that produces catalog
// recommendations. It supports single-shot and streaming constrained
// generation against an output schema, with rate limiting and typed failures.
// Everything this package returns is untrusted until it has passed the
// catalog validator.
package llm
