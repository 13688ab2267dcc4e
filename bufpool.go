package bincodec

import (
	"bytes"
	"sync"
)

// bytesBufPool reuses buffers for draining readers of unknown length.
// We pool *bytes.Buffer because they are easily reset and resized.
var bytesBufPool = sync.Pool{
	New: func() any {
		// A 4KB default avoids re-allocations for common record sizes.
		return bytes.NewBuffer(make([]byte, 0, 4096))
	},
}

// chunkSize is how much a StreamReader asks its source for at a time.
const chunkSize = 32 * 1024
