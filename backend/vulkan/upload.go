package vulkan

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	pie "github.com/IsometricSoftware/Pie"
)

// Transfers run on throwaway one-shot command buffers submitted to the
// graphics queue and waited synchronously. Uploads therefore land
// before the frame command buffer, which is submitted later.

func (t *texture) aspect() vk.ImageAspectFlags {
	if t.desc.Format.IsDepth() {
		a := vk.ImageAspectFlags(vk.ImageAspectDepthBit)
		if t.desc.Format.HasStencil() {
			a |= vk.ImageAspectFlags(vk.ImageAspectStencilBit)
		}
		return a
	}
	return vk.ImageAspectFlags(vk.ImageAspectColorBit)
}

func (t *texture) layerCount() int {
	n := t.desc.ArraySize
	if t.desc.Type == pie.TextureTypeCube {
		n *= 6
	}
	return n
}

// level0Size is the byte size of mip level 0 across every layer.
func (t *texture) level0Size() int {
	return imageByteSize(t.desc.Format, t.desc.Width, t.desc.Height, max(t.desc.Depth, 1)) * t.layerCount()
}

func imageByteSize(f pie.Format, w, h, d int) int {
	if f.IsCompressed() {
		blocks := ((w + 3) / 4) * ((h + 3) / 4)
		return blocks * int(f.BytesPerTexel()) * d
	}
	return w * h * d * int(f.BytesPerTexel())
}

func (d *device) beginOneTime() (vk.CommandBuffer, error) {
	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        d.commandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	cmds := make([]vk.CommandBuffer, 1)
	if err := vk.Error(vk.AllocateCommandBuffers(d.device, &allocInfo, cmds)); err != nil {
		return nil, fmt.Errorf("pie: transfer command buffer: %w", err)
	}
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if err := vk.Error(vk.BeginCommandBuffer(cmds[0], &beginInfo)); err != nil {
		vk.FreeCommandBuffers(d.device, d.commandPool, 1, cmds)
		return nil, fmt.Errorf("pie: transfer command buffer: %w", err)
	}
	return cmds[0], nil
}

func (d *device) endOneTime(cmd vk.CommandBuffer) error {
	if err := vk.Error(vk.EndCommandBuffer(cmd)); err != nil {
		return fmt.Errorf("pie: transfer submit: %w", err)
	}
	submit := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cmd},
	}
	if err := vk.Error(vk.QueueSubmit(d.graphicsQ, 1, []vk.SubmitInfo{submit}, vk.NullFence)); err != nil {
		return fmt.Errorf("pie: transfer submit: %w", err)
	}
	vk.QueueWaitIdle(d.graphicsQ)
	vk.FreeCommandBuffers(d.device, d.commandPool, 1, []vk.CommandBuffer{cmd})
	return nil
}

// newStaging creates a host-visible transfer-source buffer holding data.
func (d *device) newStaging(data []byte) (vk.Buffer, vk.DeviceMemory, error) {
	createInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(len(data)),
		Usage:       vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		SharingMode: vk.SharingModeExclusive,
	}
	var buf vk.Buffer
	if err := vk.Error(vk.CreateBuffer(d.device, &createInfo, nil, &buf)); err != nil {
		return vk.NullBuffer, vk.NullDeviceMemory, fmt.Errorf("%w: staging buffer: %v", pie.ErrResourceCreation, err)
	}
	var memReqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(d.device, buf, &memReqs)
	memReqs.Deref()
	memType, err := findMemoryType(d.physical.handle, memReqs.MemoryTypeBits,
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		vk.DestroyBuffer(d.device, buf, nil)
		return vk.NullBuffer, vk.NullDeviceMemory, err
	}
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memType,
	}
	var mem vk.DeviceMemory
	if err := vk.Error(vk.AllocateMemory(d.device, &allocInfo, nil, &mem)); err != nil {
		vk.DestroyBuffer(d.device, buf, nil)
		return vk.NullBuffer, vk.NullDeviceMemory, fmt.Errorf("%w: staging memory: %v", pie.ErrResourceCreation, err)
	}
	if err := vk.Error(vk.BindBufferMemory(d.device, buf, mem, 0)); err != nil {
		vk.FreeMemory(d.device, mem, nil)
		vk.DestroyBuffer(d.device, buf, nil)
		return vk.NullBuffer, vk.NullDeviceMemory, fmt.Errorf("%w: staging bind: %v", pie.ErrResourceCreation, err)
	}
	staging := &buffer{d: d, size: uint32(len(data)), memory: mem}
	if err := staging.write(0, data); err != nil {
		vk.FreeMemory(d.device, mem, nil)
		vk.DestroyBuffer(d.device, buf, nil)
		return vk.NullBuffer, vk.NullDeviceMemory, err
	}
	return buf, mem, nil
}

// transition records an image layout transition with conservative
// whole-pipeline barriers.
func (d *device) transition(cmd vk.CommandBuffer, img vk.Image, aspect vk.ImageAspectFlags,
	from, to vk.ImageLayout, levels, layers uint32) {
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       vk.AccessFlags(vk.AccessMemoryReadBit | vk.AccessMemoryWriteBit),
		DstAccessMask:       vk.AccessFlags(vk.AccessMemoryReadBit | vk.AccessMemoryWriteBit),
		OldLayout:           from,
		NewLayout:           to,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               img,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: aspect,
			LevelCount: levels,
			LayerCount: layers,
		},
	}
	vk.CmdPipelineBarrier(cmd,
		vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit),
		vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit),
		0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}

// uploadToBuffer fills a device-local buffer through a staging copy.
func (d *device) uploadToBuffer(b *buffer, data []byte) error {
	staging, mem, err := d.newStaging(data)
	if err != nil {
		return err
	}
	defer func() {
		vk.FreeMemory(d.device, mem, nil)
		vk.DestroyBuffer(d.device, staging, nil)
	}()

	cmd, err := d.beginOneTime()
	if err != nil {
		return err
	}
	vk.CmdCopyBuffer(cmd, staging, b.handle, 1, []vk.BufferCopy{{
		Size: vk.DeviceSize(len(data)),
	}})
	return d.endOneTime(cmd)
}

// uploadToTexture fills mip level 0 of every layer from tightly packed
// data and leaves the image shader-readable.
func (d *device) uploadToTexture(t *texture, data []byte) error {
	staging, mem, err := d.newStaging(data)
	if err != nil {
		return err
	}
	defer func() {
		vk.FreeMemory(d.device, mem, nil)
		vk.DestroyBuffer(d.device, staging, nil)
	}()

	cmd, err := d.beginOneTime()
	if err != nil {
		return err
	}
	levels, layers := uint32(t.desc.MipLevels), uint32(t.layerCount())
	d.transition(cmd, t.image, t.aspect(), t.layout, vk.ImageLayoutTransferDstOptimal, levels, layers)
	vk.CmdCopyBufferToImage(cmd, staging, t.image, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{{
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask: t.aspect(),
			LayerCount: layers,
		},
		ImageExtent: vk.Extent3D{
			Width:  uint32(t.desc.Width),
			Height: uint32(t.desc.Height),
			Depth:  uint32(max(t.desc.Depth, 1)),
		},
	}})
	d.transition(cmd, t.image, t.aspect(), vk.ImageLayoutTransferDstOptimal,
		vk.ImageLayoutShaderReadOnlyOptimal, levels, layers)
	t.layout = vk.ImageLayoutShaderReadOnlyOptimal
	return d.endOneTime(cmd)
}

// uploadTextureRegion replaces one subresource region.
func (d *device) uploadTextureRegion(t *texture, mip, layer uint32, x, y, z, w, h, depth int, data []byte) error {
	if imageByteSize(t.desc.Format, w, h, max(depth, 1)) != len(data) {
		return fmt.Errorf("%w: region needs %d bytes, got %d",
			pie.ErrOutOfRange, imageByteSize(t.desc.Format, w, h, max(depth, 1)), len(data))
	}
	staging, mem, err := d.newStaging(data)
	if err != nil {
		return err
	}
	defer func() {
		vk.FreeMemory(d.device, mem, nil)
		vk.DestroyBuffer(d.device, staging, nil)
	}()

	cmd, err := d.beginOneTime()
	if err != nil {
		return err
	}
	levels, layers := uint32(t.desc.MipLevels), uint32(t.layerCount())
	d.transition(cmd, t.image, t.aspect(), t.layout, vk.ImageLayoutTransferDstOptimal, levels, layers)
	vk.CmdCopyBufferToImage(cmd, staging, t.image, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{{
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask:     t.aspect(),
			MipLevel:       mip,
			BaseArrayLayer: layer,
			LayerCount:     1,
		},
		ImageOffset: vk.Offset3D{X: int32(x), Y: int32(y), Z: int32(z)},
		ImageExtent: vk.Extent3D{Width: uint32(w), Height: uint32(h), Depth: uint32(max(depth, 1))},
	}})
	d.transition(cmd, t.image, t.aspect(), vk.ImageLayoutTransferDstOptimal,
		vk.ImageLayoutShaderReadOnlyOptimal, levels, layers)
	t.layout = vk.ImageLayoutShaderReadOnlyOptimal
	return d.endOneTime(cmd)
}

// blitMipChain regenerates levels 1..n-1 of every layer from level 0
// with linear blits.
func (d *device) blitMipChain(t *texture) error {
	cmd, err := d.beginOneTime()
	if err != nil {
		return err
	}
	levels, layers := uint32(t.desc.MipLevels), uint32(t.layerCount())
	d.transition(cmd, t.image, t.aspect(), t.layout, vk.ImageLayoutTransferDstOptimal, levels, layers)

	w, h := int32(t.desc.Width), int32(t.desc.Height)
	for mip := uint32(1); mip < levels; mip++ {
		// Previous level becomes the blit source.
		prev := vk.ImageMemoryBarrier{
			SType:               vk.StructureTypeImageMemoryBarrier,
			SrcAccessMask:       vk.AccessFlags(vk.AccessTransferWriteBit),
			DstAccessMask:       vk.AccessFlags(vk.AccessTransferReadBit),
			OldLayout:           vk.ImageLayoutTransferDstOptimal,
			NewLayout:           vk.ImageLayoutTransferSrcOptimal,
			SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
			DstQueueFamilyIndex: vk.QueueFamilyIgnored,
			Image:               t.image,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:   t.aspect(),
				BaseMipLevel: mip - 1,
				LevelCount:   1,
				LayerCount:   layers,
			},
		}
		vk.CmdPipelineBarrier(cmd,
			vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{prev})

		nw, nh := max(w/2, 1), max(h/2, 1)
		blit := vk.ImageBlit{
			SrcSubresource: vk.ImageSubresourceLayers{
				AspectMask: t.aspect(),
				MipLevel:   mip - 1,
				LayerCount: layers,
			},
			DstSubresource: vk.ImageSubresourceLayers{
				AspectMask: t.aspect(),
				MipLevel:   mip,
				LayerCount: layers,
			},
		}
		blit.SrcOffsets[1] = vk.Offset3D{X: w, Y: h, Z: 1}
		blit.DstOffsets[1] = vk.Offset3D{X: nw, Y: nh, Z: 1}
		vk.CmdBlitImage(cmd,
			t.image, vk.ImageLayoutTransferSrcOptimal,
			t.image, vk.ImageLayoutTransferDstOptimal,
			1, []vk.ImageBlit{blit}, vk.FilterLinear)
		w, h = nw, nh
	}

	// Last level is still transfer-dst, the rest transfer-src; settle
	// everything shader-readable.
	if levels > 1 {
		d.transition(cmd, t.image, t.aspect(), vk.ImageLayoutTransferSrcOptimal,
			vk.ImageLayoutShaderReadOnlyOptimal, levels-1, layers)
	}
	last := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       vk.AccessFlags(vk.AccessTransferWriteBit),
		DstAccessMask:       vk.AccessFlags(vk.AccessMemoryReadBit),
		OldLayout:           vk.ImageLayoutTransferDstOptimal,
		NewLayout:           vk.ImageLayoutShaderReadOnlyOptimal,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               t.image,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:   t.aspect(),
			BaseMipLevel: levels - 1,
			LevelCount:   1,
			LayerCount:   layers,
		},
	}
	vk.CmdPipelineBarrier(cmd,
		vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit),
		0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{last})
	t.layout = vk.ImageLayoutShaderReadOnlyOptimal
	return d.endOneTime(cmd)
}
