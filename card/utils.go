package card

func Cards2bytes(cs []Card) []byte {
	out := make([]byte, 0, len(cs))
	for _, c := range cs {
		out = append(out, byte(c))
	}
	return out
}

// Bytes2cards is the inverse of Cards2bytes. Bytes that do not encode a
// real card are skipped.
func Bytes2cards(bs []byte) []Card {
	out := make([]Card, 0, len(bs))
	for _, b := range bs {
		c := Card(b)
		if !c.Valid() {
			continue
		}
		out = append(out, c)
	}
	return out
}
