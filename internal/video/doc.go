// Package video composites waveform videos from podcast episode audio. One
// build resolves the episode's feed item, downloads the enclosure audio and
// cover art into the audio cache, and drives FFmpeg to overlay a rendered
// waveform on the padded cover image.
package video
