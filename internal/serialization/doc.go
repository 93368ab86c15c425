// Package serialization saves and loads named weight tensors in the
// SafeTensors format:
//
//	[8 bytes: header size (uint64 LE)]
//	[header size bytes: JSON header]
//	[tensor data: raw little-endian bytes]
//
// The JSON header maps every tensor name to its dtype, shape and
// [start, end) byte offsets inside the data section, plus an optional
// "__metadata__" object of string pairs. Tensors are written in name order.
// The writer records a SHA-256 of the data section under the
// "sha256" metadata key; the reader verifies it when present.
//
// Example usage:
//
//	// Save a model
//	err := serialization.WriteSafeTensors("mobilenet_v2.safetensors", model.StateDict(),
//	    map[string]string{"alpha": "1.0"})
//
//	// Load a model
//	state, meta, err := serialization.ReadSafeTensors("mobilenet_v2.safetensors")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = model.LoadStateDict(state)
package serialization
