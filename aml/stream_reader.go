package aml

// codeReader is a cursor over one method/scope's AML byte slice. Unlike the
// teacher's amlStreamReader it reads from a plain []byte rather than an
// unsafe overlay onto physical memory, since table ingestion is out of this
// module's scope and callers hand us an already-mapped slice.
type codeReader struct {
	data []byte
}

func (r *codeReader) len() uint32 { return uint32(len(r.data)) }

func (r *codeReader) eof(offset uint32) bool { return offset >= r.len() }

func (r *codeReader) readByte(offset *uint32) (byte, error) {
	if r.eof(*offset) {
		return 0, errOutOfBounds
	}
	b := r.data[*offset]
	*offset++
	return b, nil
}

func (r *codeReader) peekByte(offset uint32) (byte, error) {
	if r.eof(offset) {
		return 0, errOutOfBounds
	}
	return r.data[offset], nil
}

func (r *codeReader) readBytes(offset *uint32, n int) ([]byte, error) {
	if uint64(*offset)+uint64(n) > uint64(r.len()) {
		return nil, errOutOfBounds
	}
	b := r.data[*offset : *offset+uint32(n)]
	*offset += uint32(n)
	return b, nil
}

func (r *codeReader) slice(begin, end uint32) []byte {
	if end > r.len() {
		end = r.len()
	}
	if begin > end {
		return nil
	}
	return r.data[begin:end]
}
