package ingest

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/gekko3d/voxbake/voxelbake/bake/grid"
)

const voxMagic = "VOX "

var ErrNotVox = errors.New("not a valid VOX file")

type voxModel struct {
	size   [3]uint32
	voxels [][4]byte // x, y, z, color index
}

// ReadVox reads a MagicaVoxel file. Voxels of every model are returned with
// their color resolved through the file palette; unknown chunks are skipped.
func ReadVox(r io.Reader) ([]grid.Record, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotVox, err)
	}
	if string(magic[:]) != voxMagic {
		return nil, ErrNotVox
	}
	var version int32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, err
	}

	palette := defaultVoxPalette()
	var models []voxModel
	for {
		var hdr [12]byte
		if _, err := io.ReadFull(r, hdr[:4]); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		if _, err := io.ReadFull(r, hdr[4:]); err != nil {
			return nil, err
		}
		id := string(hdr[:4])
		size := binary.LittleEndian.Uint32(hdr[4:8])

		data := make([]byte, size)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, fmt.Errorf("%s chunk: %w", id, err)
		}

		switch id {
		case "MAIN":
			// children follow inline
		case "SIZE":
			if len(data) < 12 {
				return nil, errors.New("SIZE chunk too small")
			}
			models = append(models, voxModel{size: [3]uint32{
				binary.LittleEndian.Uint32(data[0:4]),
				binary.LittleEndian.Uint32(data[4:8]),
				binary.LittleEndian.Uint32(data[8:12]),
			}})
		case "XYZI":
			if len(models) == 0 {
				return nil, errors.New("XYZI chunk before SIZE")
			}
			if len(data) < 4 {
				return nil, errors.New("XYZI chunk too small")
			}
			n := int(binary.LittleEndian.Uint32(data[:4]))
			if 4+4*n > len(data) {
				return nil, errors.New("XYZI chunk data overflow")
			}
			m := &models[len(models)-1]
			m.voxels = make([][4]byte, n)
			for i := range m.voxels {
				copy(m.voxels[i][:], data[4+4*i:])
			}
		case "RGBA":
			for i := 0; i < 255 && 4*i+3 < len(data); i++ {
				copy(palette[i+1][:], data[4*i:4*i+4])
			}
		}
	}

	var recs []grid.Record
	for _, m := range models {
		for _, v := range m.voxels {
			c := palette[v[3]]
			recs = append(recs, grid.Record{
				X:     int(v[0]),
				Y:     int(v[1]),
				Z:     int(v[2]),
				Color: uint32(c[0])<<16 | uint32(c[1])<<8 | uint32(c[2]),
			})
		}
	}
	return recs, nil
}

func defaultVoxPalette() [256][4]byte {
	var p [256][4]byte
	for i := range p {
		p[i] = [4]byte{255, 255, 255, 255}
	}
	return p
}
