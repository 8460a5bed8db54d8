package turn

import (
	"encoding/binary"
	"net"
)

const (
	headerLen   = 20
	magicCookie = 0x2112A442

	typeBindingSuccess   = 0x0101
	attrXORMappedAddress = 0x0020
)

// isStunMessage reports whether the datagram looks like a STUN/TURN
// message: at least a full header, with a request or success-response class
// in the leading type byte.
func isStunMessage(b []byte) bool {
	if len(b) < headerLen {
		return false
	}
	msgType := binary.BigEndian.Uint16(b[0:2])
	switch msgType & 0xFF00 {
	case 0x0000, 0x0100:
		return true
	}
	return false
}

// bindingResponse encodes a Binding Success Response carrying addr as the
// XOR-MAPPED-ADDRESS. The transaction id is zeroed instead of echoed from
// the request, which strict clients may reject. IPv4 only; returns nil for
// anything else.
func bindingResponse(addr *net.UDPAddr) []byte {
	ip := addr.IP.To4()
	if ip == nil {
		return nil
	}

	resp := make([]byte, headerLen+12)
	binary.BigEndian.PutUint16(resp[0:2], typeBindingSuccess)
	binary.BigEndian.PutUint32(resp[4:8], magicCookie)
	// bytes 8..20: zeroed transaction id

	attr := resp[headerLen:]
	binary.BigEndian.PutUint16(attr[0:2], attrXORMappedAddress)
	binary.BigEndian.PutUint16(attr[2:4], 8)
	attr[4] = 0x00 // reserved
	attr[5] = 0x01 // family: IPv4
	binary.BigEndian.PutUint16(attr[6:8], uint16(addr.Port)^(magicCookie>>16))

	var cookie [4]byte
	binary.BigEndian.PutUint32(cookie[:], magicCookie)
	for i := 0; i < net.IPv4len; i++ {
		attr[8+i] = ip[i] ^ cookie[i]
	}

	binary.BigEndian.PutUint16(resp[2:4], uint16(len(resp)-headerLen))
	return resp
}
