package transaction

import (
	"github.com/pkg/errors"
)

// GetData returns an empty data value for the given type.
func GetData(txType TxType) (Data, bool) {
	switch txType {
	case TypeAllocate:
		return &AllocateData{}, true
	case TypeClaim:
		return &ClaimData{}, true
	case TypeClaimAll:
		return &ClaimAllData{}, true
	case TypeTransfer:
		return &TransferData{}, true
	case TypePause:
		return &PauseData{}, true
	case TypeResume:
		return &ResumeData{}, true
	case TypeRetrieve:
		return &RetrieveData{}, true
	default:
		return nil, false
	}
}

func (e *Executor) DecodeFromBytes(buf []byte) (*Transaction, error) {
	var tx Transaction
	if err := cdc.UnmarshalBinaryBare(buf, &tx); err != nil {
		return nil, err
	}

	data, ok := e.decodeTxFunc(tx.Type)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownTxType, "type %s", tx.Type)
	}

	if len(tx.Data) != 0 {
		if err := cdc.UnmarshalBinaryBare(tx.Data, data); err != nil {
			return nil, errors.Wrapf(err, "failed to decode %s data", tx.Type)
		}
	}

	tx.SetDecodedData(data)

	return &tx, nil
}
