package kern

// sysWrite copies length bytes at addr from the calling task's address space
// to the writer open on fd. Returns bytes written, or a negated errno.
func (k *Kernel) sysWrite(fd, addr, length uint64) int64 {
	w, ok := k.fds[fd]
	if !ok {
		k.logger.Errorw("write to unknown fd", "fd", fd, "slot", k.tasks.CurrentSlot())
		return -EBADF
	}

	buf, err := k.space().Slice(addr, int(length))
	if err != nil {
		k.logger.Errorw("write buffer not mapped", "addr", addr, "len", length, "err", err)
		return -EFAULT
	}

	n, err := w.Write(buf)
	if err != nil {
		k.logger.Errorw("console write failed", "fd", fd, "err", err)
		return -EIO
	}

	return int64(n)
}
