package wire

import (
	"bytes"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"google.golang.org/grpc/encoding"
	_ "google.golang.org/grpc/encoding/gzip"
)

// ZstdName is the grpc-encoding name of the zstd compressor.
const ZstdName = "zstd"

func init() {
	encoding.RegisterCompressor(&zstdCompressor{})
}

// zstdCompressor shares one encoder and one decoder; both are safe for
// concurrent stateless use through EncodeAll and DecodeAll, so streaming
// wrappers buffer the whole message.
type zstdCompressor struct {
	once sync.Once
	enc  *zstd.Encoder
	dec  *zstd.Decoder
	err  error
}

func (c *zstdCompressor) init() error {
	c.once.Do(func() {
		c.enc, c.err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if c.err != nil {
			return
		}
		c.dec, c.err = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	})
	return c.err
}

func (c *zstdCompressor) Name() string {
	return ZstdName
}

func (c *zstdCompressor) Compress(w io.Writer) (io.WriteCloser, error) {
	if err := c.init(); err != nil {
		return nil, err
	}
	return &zstdWriter{enc: c.enc, w: w}, nil
}

func (c *zstdCompressor) Decompress(r io.Reader) (io.Reader, error) {
	if err := c.init(); err != nil {
		return nil, err
	}
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	out, err := c.dec.DecodeAll(src, nil)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(out), nil
}

type zstdWriter struct {
	enc *zstd.Encoder
	w   io.Writer
	buf []byte
}

func (z *zstdWriter) Write(p []byte) (int, error) {
	z.buf = append(z.buf, p...)
	return len(p), nil
}

func (z *zstdWriter) Close() error {
	_, err := z.w.Write(z.enc.EncodeAll(z.buf, nil))
	z.buf = nil
	return err
}
