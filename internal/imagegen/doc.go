// Package imagegen turns a text prompt into encoded image bytes.
//
// A Generator is the upstream capability (an HTTP image API, Imagen). The
// Adapter wraps one with a per-call timeout, optional resize and re-encode,
// and the data URI encoding cards store their images in.
package imagegen
