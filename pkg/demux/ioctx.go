package demux

import (
	"io"

	"github.com/asticode/go-astiav"
)

// readerIOContext adapts a plain io.Reader (no seek guarantee) to an
// astiav custom IO context.3 ("no seekability
// required") and section 9 ("Cross-thread reader" — ownership is moved
// into the producer, not shared).
type readerIOContext struct {
	r      io.Reader
	avioCb *astiav.IOContext
}

const ioContextBufferSize = 32 * 1024

func newReaderIOContext(r io.Reader) (*readerIOContext, error) {
	ctx := &readerIOContext{r: r}
	avio := astiav.AllocIOContext(ioContextBufferSize, false, ctx.read, nil, nil)
	if avio == nil {
		return nil, errAllocIOContext
	}
	ctx.avioCb = avio
	return ctx, nil
}

func (c *readerIOContext) read(size int) ([]byte, error) {
	buf := make([]byte, size)
	n, err := c.r.Read(buf)
	if n == 0 && err != nil {
		// Any reader failure ends the input: NextPacket treats EOF as a
		// clean end-of-stream.
		return nil, io.EOF
	}
	return buf[:n], nil
}

func (c *readerIOContext) AVIOContext() *astiav.IOContext { return c.avioCb }

func (c *readerIOContext) Free() {
	if c.avioCb != nil {
		c.avioCb.Free()
	}
}

var errAllocIOContext = ioContextError("allocate custom io context")

type ioContextError string

func (e ioContextError) Error() string { return string(e) }
