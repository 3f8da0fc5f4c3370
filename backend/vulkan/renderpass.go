package vulkan

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	pie "github.com/IsometricSoftware/Pie"
)

// Clears are expressed as render-pass load ops, so every attachment
// format set needs up to a handful of pass variants: the draw variant
// preserves everything, the clear variants discard the planes being
// cleared. All variants of one format set are render-pass compatible,
// so one vk.Framebuffer serves them all.

// loadOps selects which planes a render pass clears on begin. The zero
// value preserves everything.
type loadOps struct {
	color   bool
	depth   bool
	stencil bool
}

const maxColorAttachments = 4

type renderPassKey struct {
	colors      [maxColorAttachments]vk.Format
	numColors   uint8
	depthFormat vk.Format
	ops         loadOps
}

func (d *device) renderPassFor(colorFormats []vk.Format, depthFormat vk.Format, ops loadOps) (vk.RenderPass, error) {
	if len(colorFormats) > maxColorAttachments {
		return vk.NullRenderPass, fmt.Errorf("%w: too many color attachments", pie.ErrResourceCreation)
	}
	key := renderPassKey{numColors: uint8(len(colorFormats)), depthFormat: depthFormat, ops: ops}
	copy(key.colors[:], colorFormats)
	if rp, ok := d.renderPasses[key]; ok {
		return rp, nil
	}

	load := func(clear bool) vk.AttachmentLoadOp {
		if clear {
			return vk.AttachmentLoadOpClear
		}
		return vk.AttachmentLoadOpLoad
	}

	var descs []vk.AttachmentDescription
	var refs []vk.AttachmentReference
	for _, f := range colorFormats {
		refs = append(refs, vk.AttachmentReference{
			Attachment: uint32(len(descs)),
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		})
		initial := vk.ImageLayoutColorAttachmentOptimal
		if ops.color {
			// Cleared content need not be preserved across the begin.
			initial = vk.ImageLayoutUndefined
		}
		descs = append(descs, vk.AttachmentDescription{
			Format:         f,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         load(ops.color),
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  initial,
			FinalLayout:    vk.ImageLayoutColorAttachmentOptimal,
		})
	}

	var depthRef *vk.AttachmentReference
	if depthFormat != vk.FormatUndefined {
		depthRef = &vk.AttachmentReference{
			Attachment: uint32(len(descs)),
			Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
		}
		descs = append(descs, vk.AttachmentDescription{
			Format:         depthFormat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         load(ops.depth),
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  load(ops.stencil),
			StencilStoreOp: vk.AttachmentStoreOpStore,
			InitialLayout:  vk.ImageLayoutDepthStencilAttachmentOptimal,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		})
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		ColorAttachmentCount:    uint32(len(refs)),
		PColorAttachments:       refs,
		PDepthStencilAttachment: depthRef,
	}
	createInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(descs)),
		PAttachments:    descs,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
	}
	var rp vk.RenderPass
	if err := vk.Error(vk.CreateRenderPass(d.device, &createInfo, nil, &rp)); err != nil {
		return vk.NullRenderPass, fmt.Errorf("%w: vkCreateRenderPass: %v", pie.ErrResourceCreation, err)
	}
	d.renderPasses[key] = rp
	return rp, nil
}

// createDefaultFramebuffers builds one vk.Framebuffer per swapchain
// image against the preserve-everything pass variant.
func (d *device) createDefaultFramebuffers() error {
	rp, err := d.renderPassFor([]vk.Format{d.sc.format}, d.sc.depthFormat, loadOps{})
	if err != nil {
		return err
	}
	d.defaultFramebuffers = make([]vk.Framebuffer, len(d.sc.views))
	for i, view := range d.sc.views {
		views := []vk.ImageView{view}
		if d.sc.depthView != vk.NullImageView {
			views = append(views, d.sc.depthView)
		}
		createInfo := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      rp,
			AttachmentCount: uint32(len(views)),
			PAttachments:    views,
			Width:           d.sc.extent.Width,
			Height:          d.sc.extent.Height,
			Layers:          1,
		}
		if err := vk.Error(vk.CreateFramebuffer(d.device, &createInfo, nil, &d.defaultFramebuffers[i])); err != nil {
			return fmt.Errorf("%w: default framebuffer: %v", pie.ErrSwapchainCreation, err)
		}
	}
	return nil
}

func (d *device) destroyDefaultFramebuffers() {
	for _, fb := range d.defaultFramebuffers {
		vk.DestroyFramebuffer(d.device, fb, nil)
	}
	d.defaultFramebuffers = nil
}
