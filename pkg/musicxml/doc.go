// Package musicxml binds the MusicXML <measure> element of partwise scores
// and the thirteen kinds of music data it may contain.
//
// A Measure is built from explicit fields with NewMeasure, from a DOM
// element with DecodeMeasure, or by copying another Measure. EncodeTo and
// Element write it back to a DOM element. Children that the binding does
// not model field by field keep their content in a Fragment, so decoding
// and re-encoding a measure preserves it.
package musicxml
