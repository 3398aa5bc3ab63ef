// Package audio holds the sample buffers that flow between capture, the
// model and the output device, the wave codec used for reference samples,
// and an oto-backed player for the system default output.
package audio
