package util

import (
	"github.com/vmihailenco/msgpack"

	"github.com/omondi/tembo/storage/disk"
)

// ToByteSlice encodes obj into a page-sized payload, padded with zeroes.
func ToByteSlice[T any](obj T) ([]byte, error) {
	res := make([]byte, disk.PAGE_SIZE)

	data, err := msgpack.Marshal(obj)
	if err != nil {
		return nil, err
	}
	copy(res, data)

	return res, nil
}

// ToStruct decodes a page payload produced by ToByteSlice.
func ToStruct[T any](data []byte) (T, error) {
	var res T

	if err := msgpack.Unmarshal(data, &res); err != nil {
		return res, err
	}

	return res, nil
}
