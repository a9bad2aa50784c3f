package sqpack

import (
	"fmt"
	"io"
)

// WriteCSV emits the sheet as CSV: one header row of quoted short type tags,
// then one quoted row per entry in iteration order (spec.md §6). No
// quoting of embedded quotes/commas/newlines is performed — a documented
// limitation carried forward from the original implementation, not fixed
// here.
func (s *Sheet) WriteCSV(w io.Writer) error {
	if _, err := io.WriteString(w, `"index",`); err != nil {
		return err
	}
	for i, col := range s.Columns {
		sep := ","
		if i == len(s.Columns)-1 {
			sep = ""
		}
		if _, err := fmt.Fprintf(w, "%q%s", col.header(), sep); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}

	for _, idx := range s.rowOrder {
		row := s.rows[idx]
		if err := writeCSVRow(w, idx, row); err != nil {
			return err
		}
	}
	return nil
}

func writeCSVRow(w io.Writer, index uint32, row RowBytes) error {
	if _, err := fmt.Fprintf(w, "%q,", fmt.Sprint(index)); err != nil {
		return err
	}

	for i, col := range row.columns {
		cell, err := cellCSVValue(row, i, col)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, cell); err != nil {
			return err
		}
		if i != len(row.columns)-1 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func cellCSVValue(row RowBytes, index int, col ColumnDescriptor) (string, error) {
	switch col.Kind {
	case KindString:
		v, err := ReadCell[string](row, index)
		if err != nil {
			return "", err
		}
		return `"` + v + `"`, nil
	case KindBool:
		v, err := ReadCell[bool](row, index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%q", fmt.Sprint(v)), nil
	case KindI8:
		v, err := ReadCell[int8](row, index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%q", fmt.Sprint(v)), nil
	case KindU8:
		v, err := ReadCell[uint8](row, index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%q", fmt.Sprint(v)), nil
	case KindI16:
		v, err := ReadCell[int16](row, index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%q", fmt.Sprint(v)), nil
	case KindU16:
		v, err := ReadCell[uint16](row, index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%q", fmt.Sprint(v)), nil
	case KindI32:
		v, err := ReadCell[int32](row, index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%q", fmt.Sprint(v)), nil
	case KindU32:
		v, err := ReadCell[uint32](row, index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%q", fmt.Sprint(v)), nil
	case KindF32:
		v, err := ReadCell[float32](row, index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%q", fmt.Sprint(v)), nil
	case KindPackedInts:
		return `"unsupported"`, nil
	case KindBitFlags:
		bit, err := ReadBit(row, index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%q", fmt.Sprint(bit)), nil
	default:
		return "", cellErr(fmt.Sprintf("unknown column kind %v", col.Kind))
	}
}
