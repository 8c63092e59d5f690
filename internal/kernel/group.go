package kernel

// Workgroup dimensions, matching @workgroup_size(8, 8, 1) in the shader.
const (
	GroupSizeX = 8
	GroupSizeY = 8
	GroupSizeZ = 1
)

// GroupCount returns the number of workgroups needed to cover a
// width x height region. Non-positive sizes yield an empty grid.
func GroupCount(width, height int32) (x, y, z uint32) {
	if width <= 0 || height <= 0 {
		return 0, 0, 0
	}
	x = (uint32(width) + GroupSizeX - 1) / GroupSizeX
	y = (uint32(height) + GroupSizeY - 1) / GroupSizeY
	return x, y, GroupSizeZ
}

// RunGroup runs all invocations of workgroup (gx, gy, 0).
func RunGroup(gx, gy uint32, p *Params, reduce Reducer, b Bindings) {
	baseX := gx * GroupSizeX
	baseY := gy * GroupSizeY
	for ly := uint32(0); ly < GroupSizeY; ly++ {
		for lx := uint32(0); lx < GroupSizeX; lx++ {
			Invoke([3]uint32{baseX + lx, baseY + ly, 0}, p, reduce, b)
		}
	}
}

// Dispatch runs an entire grid sequentially, row of workgroups by row.
// It is the reference order used to check parallel dispatchers.
func Dispatch(groupsX, groupsY uint32, p *Params, reduce Reducer, b Bindings) {
	for gy := uint32(0); gy < groupsY; gy++ {
		for gx := uint32(0); gx < groupsX; gx++ {
			RunGroup(gx, gy, p, reduce, b)
		}
	}
}
