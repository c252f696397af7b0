package state

import (
	"encoding/binary"

	"github.com/Layr-Labs/rewards-ledger/pkg/ledgerErrors"
	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
)

// encoder appends little-endian fixed-width fields.
type encoder struct {
	buf []byte
}

func newEncoder(d Discriminator, dataLen int) *encoder {
	e := &encoder{buf: make([]byte, 0, HeaderLen+dataLen)}
	e.buf = append(e.buf, byte(d), CurrentVersion)
	return e
}

func (e *encoder) u8(v uint8) *encoder {
	e.buf = append(e.buf, v)
	return e
}

func (e *encoder) boolean(v bool) *encoder {
	if v {
		return e.u8(1)
	}
	return e.u8(0)
}

func (e *encoder) pad(n int) *encoder {
	e.buf = append(e.buf, make([]byte, n)...)
	return e
}

func (e *encoder) u64(v uint64) *encoder {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
	return e
}

func (e *encoder) i64(v int64) *encoder {
	return e.u64(uint64(v))
}

// u128 writes the low 128 bits of v as two little-endian limbs.
func (e *encoder) u128(v *uint256.Int) *encoder {
	return e.u64(v[0]).u64(v[1])
}

func (e *encoder) key(k solana.PublicKey) *encoder {
	e.buf = append(e.buf, k[:]...)
	return e
}

func (e *encoder) raw(b []byte) *encoder {
	e.buf = append(e.buf, b...)
	return e
}

func (e *encoder) bytes() []byte {
	return e.buf
}

// decoder reads fields in order and remembers the first failure.
type decoder struct {
	data []byte
	off  int
	err  error
}

func newDecoder(data []byte, d Discriminator, dataLen int) (*decoder, error) {
	if len(data) < HeaderLen+dataLen {
		return nil, ledgerErrors.ErrInvalidAccountData
	}
	if Discriminator(data[0]) != d {
		return nil, ledgerErrors.ErrInvalidAccountData
	}
	if data[1] == 0 || data[1] > CurrentVersion {
		return nil, ledgerErrors.ErrInvalidAccountData
	}
	return &decoder{data: data, off: HeaderLen}, nil
}

func (d *decoder) take(n int) []byte {
	if d.err != nil {
		return make([]byte, n)
	}
	if d.off+n > len(d.data) {
		d.err = ledgerErrors.ErrInvalidAccountData
		return make([]byte, n)
	}
	b := d.data[d.off : d.off+n]
	d.off += n
	return b
}

func (d *decoder) u8() uint8 {
	return d.take(1)[0]
}

func (d *decoder) boolean() bool {
	return d.u8() != 0
}

func (d *decoder) skip(n int) {
	d.take(n)
}

func (d *decoder) u64() uint64 {
	return binary.LittleEndian.Uint64(d.take(8))
}

func (d *decoder) i64() int64 {
	return int64(d.u64())
}

func (d *decoder) u128() uint256.Int {
	lo := d.u64()
	hi := d.u64()
	return uint256.Int{lo, hi, 0, 0}
}

func (d *decoder) key() solana.PublicKey {
	return solana.PublicKeyFromBytes(d.take(solana.PublicKeyLength))
}

func (d *decoder) hash() [32]byte {
	var h [32]byte
	copy(h[:], d.take(32))
	return h
}

func (d *decoder) rest() []byte {
	if d.err != nil {
		return nil
	}
	return d.data[d.off:]
}
