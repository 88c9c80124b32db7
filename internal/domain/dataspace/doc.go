// Package dataspace builds dataspace components for the Linux ROM backend.
//
// On Linux, ROM modules are not looked up in a boot image. They are files of
// the host file system, opened from the serving directory and handed out as
// capabilities. Session arguments come from less trusted clients, so every
// step that can fail refuses with the single ErrServiceDenied. The causes are
// only visible in the log.
//
// Construction steps for file-backed dataspaces:
//
//	args ─► label last element ─► Filename ─► stat + page align ─► open ─► capability
//
// Example Usage:
//
//	b := dataspace.NewBuilder(hostfs.New("."), capability.NewTable(nil), logger)
//	ds, err := b.Construct(`label="init -> boot_module.bin"`)
//	if errors.Is(err, dataspace.ErrServiceDenied) {
//	    // refuse the session
//	}
//
// The iomem constructor only exists so that all backends share the same
// construction contract. It is never used on Linux.
package dataspace
