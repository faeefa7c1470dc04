package source

import (
	"errors"
	"fmt"
	"io"

	"github.com/pion/opus"
	"github.com/pion/opus/pkg/oggreader"
	"github.com/sirupsen/logrus"
)

// maxFrameSamples is the largest Opus frame the decoder produces per
// channel: 60ms at 48kHz.
const maxFrameSamples = 2880

// OpusFile decodes an Ogg Opus stream into input blocks.
//
// Decoded PCM is buffered per channel and drained block by block; when the
// driver asks for more samples than a decoded frame holds, additional pages
// are parsed and decoded on demand. Once the stream is exhausted ReadBlock
// returns io.EOF and the driver substitutes silence.
//
// When the driver has more input channels than the stream, the decoded
// channels are repeated across the extra inputs (mono material feeds both
// inputs of a stereo stream).
type OpusFile struct {
	reader  *oggreader.OggReader
	decoder *opus.Decoder

	decodeBuf []byte // S16LE scratch, one frame
	left      []float32
	right     []float32
	stereo    bool
	exhausted bool
}

// NewOpusFile creates a source decoding the Ogg Opus stream read from r.
//
// Parameters:
//   - r: The Ogg Opus container stream
//
// Returns:
//   - *OpusFile: The new source
//   - error: Parse error if r does not carry a valid Ogg stream
func NewOpusFile(r io.Reader) (*OpusFile, error) {
	logrus.WithFields(logrus.Fields{
		"function": "NewOpusFile",
	}).Info("Creating new opus file source")

	ogg, header, err := oggreader.NewWith(r)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "NewOpusFile",
			"error":    err.Error(),
		}).Error("Ogg stream validation failed")
		return nil, fmt.Errorf("invalid ogg stream: %w", err)
	}

	decoder := opus.NewDecoder()

	logrus.WithFields(logrus.Fields{
		"function":    "NewOpusFile",
		"channels":    header.Channels,
		"sample_rate": header.SampleRate,
	}).Info("Opus file source created successfully")

	return &OpusFile{
		reader:    ogg,
		decoder:   &decoder,
		decodeBuf: make([]byte, maxFrameSamples*2*2), // stereo int16 worst case
	}, nil
}

// ReadBlock fills the input channels with the next numSamples of decoded
// audio. Returns io.EOF when the stream is fully drained.
func (o *OpusFile) ReadBlock(inputs [][]float32, numSamples int) error {
	if numSamples < 0 {
		numSamples = 0
	}

	for len(o.left) < numSamples {
		if err := o.decodeNextPage(); err != nil {
			if errors.Is(err, io.EOF) && len(o.left) > 0 {
				break // drain the tail, EOF on the next block
			}
			return err
		}
	}

	n := numSamples
	if n > len(o.left) {
		n = len(o.left)
	}

	for ich, in := range inputs {
		if in == nil {
			continue
		}
		src := o.left
		if o.stereo && ich%2 == 1 {
			src = o.right
		}
		for i := 0; i < numSamples && i < len(in); i++ {
			if i < n {
				in[i] = src[i]
			} else {
				in[i] = 0
			}
		}
	}

	o.left = o.left[n:]
	if o.stereo {
		o.right = o.right[n:]
	}
	return nil
}

// decodeNextPage parses one Ogg page and decodes every Opus segment on it
// into the per-channel buffers.
func (o *OpusFile) decodeNextPage() error {
	if o.exhausted {
		return io.EOF
	}

	segments, _, err := o.reader.ParseNextPage()
	if errors.Is(err, io.EOF) {
		o.exhausted = true
		logrus.WithFields(logrus.Fields{
			"function": "OpusFile.decodeNextPage",
		}).Info("Opus stream exhausted")
		return io.EOF
	}
	if err != nil {
		return fmt.Errorf("ogg page parse failed: %w", err)
	}

	for _, segment := range segments {
		if len(segment) == 0 {
			continue
		}
		_, isStereo, err := o.decoder.Decode(segment, o.decodeBuf)
		if err != nil {
			// Header packets (OpusHead/OpusTags) are not audio; skip
			// anything the decoder rejects rather than aborting playback.
			logrus.WithFields(logrus.Fields{
				"function":     "OpusFile.decodeNextPage",
				"segment_size": len(segment),
				"error":        err.Error(),
			}).Debug("Skipping undecodable segment")
			continue
		}

		o.stereo = isStereo
		o.appendDecoded(isStereo)
	}
	return nil
}

// appendDecoded converts the S16LE scratch buffer into per-channel float32
// samples, following the decoder's fixed 20ms frame geometry.
func (o *OpusFile) appendDecoded(isStereo bool) {
	const frameSamples = 960 // 20ms at 48kHz, the decoder's frame size

	for i := 0; i < frameSamples; i++ {
		if isStereo {
			o.left = append(o.left, s16ToFloat(o.decodeBuf, 2*i))
			o.right = append(o.right, s16ToFloat(o.decodeBuf, 2*i+1))
		} else {
			o.left = append(o.left, s16ToFloat(o.decodeBuf, i))
		}
	}
}

// s16ToFloat reads little-endian sample index i and scales it to [-1, 1).
func s16ToFloat(buf []byte, i int) float32 {
	sample := int16(buf[2*i]) | int16(buf[2*i+1])<<8
	return float32(sample) / 32768.0
}
