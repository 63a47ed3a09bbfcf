package bytecode

func copyStrings(src []string) []string {
	if src == nil {
		return nil
	}
	dst := make([]string, len(src))
	copy(dst, src)
	return dst
}

func copyBytes(src []byte) []byte {
	if src == nil {
		return nil
	}
	dst := make([]byte, len(src))
	copy(dst, src)
	return dst
}

// copyConstants copies the constant pool. Tuples are copied recursively;
// nested units are immutable and shared.
func copyConstants(src []any) []any {
	if src == nil {
		return nil
	}
	dst := make([]any, len(src))
	for i, v := range src {
		if t, ok := v.(Tuple); ok {
			v = Tuple(copyConstants(t))
		}
		dst[i] = v
	}
	return dst
}
