// Package whispercpp implements the inference engine on top of the
// whisper.cpp Go bindings. The cgo-backed engine is compiled only with
// the whisper_cpp build tag; default builds register a factory that
// fails at load time with a clear message. Audio decoding (ffmpeg) and
// voice-activity detection are plain Go and always compiled.
package whispercpp
