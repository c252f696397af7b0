package ledger

import (
	"encoding/binary"

	"github.com/Layr-Labs/rewards-ledger/pkg/storage"
	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
	"github.com/wealdtech/go-merkletree/v2"
	"github.com/wealdtech/go-merkletree/v2/keccak256"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	writeKind_Delete byte = 0
	writeKind_Put    byte = 1
)

// recordingTx passes everything through to the store transaction and keeps
// the final value of every address written, in first-write order. A nil
// value is a delete.
type recordingTx struct {
	storage.Tx
	writes *orderedmap.OrderedMap[solana.PublicKey, []byte]
}

func newRecordingTx(tx storage.Tx) *recordingTx {
	return &recordingTx{
		Tx:     tx,
		writes: orderedmap.New[solana.PublicKey, []byte](),
	}
}

func (t *recordingTx) Put(address solana.PublicKey, data []byte) error {
	if err := t.Tx.Put(address, data); err != nil {
		return err
	}
	t.writes.Set(address, data)
	return nil
}

func (t *recordingTx) Delete(address solana.PublicKey) error {
	if err := t.Tx.Delete(address); err != nil {
		return err
	}
	t.writes.Set(address, nil)
	return nil
}

// commitmentRoot merkleizes the invocation header followed by one leaf per
// written address.
func commitmentRoot(invocationId string, now int64, writes *orderedmap.OrderedMap[solana.PublicKey, []byte]) (gethcommon.Hash, error) {
	header := binary.LittleEndian.AppendUint64([]byte(invocationId), uint64(now))
	leaves := [][]byte{header}
	for pair := writes.Oldest(); pair != nil; pair = pair.Next() {
		leaves = append(leaves, encodeWriteLeaf(pair.Key, pair.Value))
	}

	tree, err := merkletree.NewTree(
		merkletree.WithData(leaves),
		merkletree.WithHashType(keccak256.New()),
	)
	if err != nil {
		return gethcommon.Hash{}, err
	}
	return gethcommon.BytesToHash(tree.Root()), nil
}

func encodeWriteLeaf(address solana.PublicKey, data []byte) []byte {
	leaf := make([]byte, 0, solana.PublicKeyLength+1+len(data))
	leaf = append(leaf, address[:]...)
	if data == nil {
		return append(leaf, writeKind_Delete)
	}
	leaf = append(leaf, writeKind_Put)
	return append(leaf, data...)
}
