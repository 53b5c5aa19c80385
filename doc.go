// Package g722swb implements the ITU-T G.722 third-edition codec family:
// the sub-band ADPCM wideband core, its Annex B super-wideband scalable
// bandwidth-extension and algebraic-VQ enhancement layers, and the
// Appendix III wideband packet-loss concealment engine.
//
// Encoder and Decoder are the session objects (spec §6.1); each is
// single-threaded and holds all per-session working state, so multiple
// sessions run independently with no shared mutable state. Construct one
// per call with NewEncoder or NewDecoder and Reset between independent
// streams; there is nothing to release beyond normal garbage collection,
// so no destroy/close step is needed.
package g722swb
