package kernel

// Memset sets every byte of target to the supplied value. Instead of using a
// for loop, this function uses log2(len(target)) copy calls which should give
// us a speed boost as frames are always page-sized.
func Memset(target []byte, value byte) {
	if len(target) == 0 {
		return
	}

	// Set first element and make log2(size) optimized copies
	target[0] = value
	for index := 1; index < len(target); index *= 2 {
		copy(target[index:], target[:index])
	}
}

// Memcopy copies min(len(src), len(dst)) bytes from src to dst.
func Memcopy(src, dst []byte) {
	if len(src) == 0 || len(dst) == 0 {
		return
	}

	copy(dst, src)
}
