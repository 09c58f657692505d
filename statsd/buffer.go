package statsd

type packetFullError string

func (e packetFullError) Error() string { return string(e) }

const errPacketFull = packetFullError("statsd packet is full")

// packetBuffer packs datagrams into one newline separated packet.
type packetBuffer struct {
	buffer       []byte
	maxSize      int
	elementCount int
}

func newPacketBuffer(maxSize int) *packetBuffer {
	return &packetBuffer{
		buffer:  make([]byte, 0, maxSize),
		maxSize: maxSize,
	}
}

// write appends datagram to the packet. The first datagram is always
// accepted, even when larger than maxSize. The next ones must leave room for
// their separator: maxSize - len(packet) - 1 > len(datagram).
func (b *packetBuffer) write(datagram string) error {
	if b.elementCount != 0 {
		if b.maxSize-len(b.buffer)-1 <= len(datagram) {
			return errPacketFull
		}
		b.buffer = append(b.buffer, '\n')
	}
	b.buffer = append(b.buffer, datagram...)
	b.elementCount++
	return nil
}

func (b *packetBuffer) reset() {
	b.buffer = b.buffer[:0]
	b.elementCount = 0
}

func (b *packetBuffer) bytes() []byte {
	return b.buffer
}
