// pool.go - scratch buffers for checksum and encoding
package pix

import "sync"

var bufferPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, 0, 512)
		return &buf
	},
}

func getBuffer() []byte {
	buf := bufferPool.Get().(*[]byte)
	return (*buf)[:0]
}

func putBuffer(buf []byte) {
	if cap(buf) <= 4096 { // Don't pool huge buffers
		b := buf[:0]
		bufferPool.Put(&b)
	}
}
