package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/rathaus-crops/internal/document"
	"github.com/ironsheep/rathaus-crops/internal/geometry"
)

// maxFormDepth bounds Form XObject nesting.
const maxFormDepth = 12

// placement is one painted image XObject.
type placement struct {
	name string
	ref  types.IndirectRef
	rect geometry.Rect
}

// walker collects image placements from a content stream and the Form
// XObjects it invokes.
type walker struct {
	ctx        *model.Context
	log        logrus.FieldLogger
	placements []placement

	// frames holds the resources of the content stream being interpreted,
	// innermost last.
	frames []types.Dict
	// active guards against forms that invoke themselves.
	active map[int]bool
}

func (w *walker) run(content []byte, resources types.Dict) error {
	w.active = make(map[int]bool)
	w.frames = []types.Dict{resources}
	return interpret(content, identity, w)
}

func (w *walker) paintXObject(name string, ctm matrix) error {
	resources := w.frames[len(w.frames)-1]
	ref, sd, err := lookupXObject(w.ctx, resources, name)
	if err != nil {
		return err
	}
	if sd == nil {
		w.log.WithField("xobject", name).Debug("XObject not found in resources")
		return nil
	}

	subtype := sd.NameEntry("Subtype")
	switch {
	case subtype == nil:
		return nil
	case *subtype == "Image":
		w.placements = append(w.placements, placement{name: name, ref: ref, rect: ctm.unitSquare()})
	case *subtype == "Form":
		return w.paintForm(name, ref, sd, ctm)
	}
	return nil
}

func (w *walker) paintForm(name string, ref types.IndirectRef, sd *types.StreamDict, ctm matrix) error {
	objNr := ref.ObjectNumber.Value()
	if w.active[objNr] || len(w.frames) > maxFormDepth {
		w.log.WithField("xobject", name).Warn("skipping recursive form XObject")
		return nil
	}

	if err := sd.Decode(); err != nil {
		return fmt.Errorf("failed to decode form %s: %w", name, err)
	}

	formCTM := ctm
	if m, ok := arrayMatrix(w.ctx, sd.Dict, "Matrix"); ok {
		formCTM = m.mul(ctm)
	}

	resources := w.frames[len(w.frames)-1]
	if obj, found := sd.Find("Resources"); found {
		if d, err := w.ctx.DereferenceDict(obj); err == nil && d != nil {
			resources = d
		}
	}

	w.active[objNr] = true
	w.frames = append(w.frames, resources)
	err := interpret(sd.Content, formCTM, w)
	w.frames = w.frames[:len(w.frames)-1]
	delete(w.active, objNr)
	return err
}

// lookupXObject resolves a named XObject in a resource dictionary. A missing
// entry yields a nil stream and no error.
func lookupXObject(ctx *model.Context, resources types.Dict, name string) (types.IndirectRef, *types.StreamDict, error) {
	if resources == nil {
		return types.IndirectRef{}, nil, nil
	}
	obj, found := resources.Find("XObject")
	if !found {
		return types.IndirectRef{}, nil, nil
	}
	xobjects, err := ctx.DereferenceDict(obj)
	if err != nil {
		return types.IndirectRef{}, nil, fmt.Errorf("failed to resolve XObject resources: %w", err)
	}
	entry, found := xobjects.Find(name)
	if !found {
		return types.IndirectRef{}, nil, nil
	}

	var ref types.IndirectRef
	switch v := entry.(type) {
	case types.IndirectRef:
		ref = v
	case *types.IndirectRef:
		ref = *v
	default:
		return types.IndirectRef{}, nil, nil
	}

	sd, _, err := ctx.DereferenceStreamDict(ref)
	if err != nil {
		return ref, nil, fmt.Errorf("failed to resolve XObject %s: %w", name, err)
	}
	return ref, sd, nil
}

func arrayMatrix(ctx *model.Context, d types.Dict, key string) (matrix, bool) {
	obj, found := d.Find(key)
	if !found {
		return matrix{}, false
	}
	arr, err := ctx.DereferenceArray(obj)
	if err != nil || len(arr) != 6 {
		return matrix{}, false
	}
	var m matrix
	for i, o := range arr {
		n, ok := number(o)
		if !ok {
			return matrix{}, false
		}
		m[i] = n
	}
	return m, true
}

func number(o types.Object) (float64, bool) {
	switch v := o.(type) {
	case types.Integer:
		return float64(v.Value()), true
	case types.Float:
		return v.Value(), true
	}
	return 0, false
}

// decodeImage returns the pixels of an image XObject, decoding each object
// once per document.
func (d *Document) decodeImage(ref types.IndirectRef) (image.Image, error) {
	return d.images.Load(ref.ObjectNumber.Value(), func() (image.Image, error) {
		sd, _, err := d.ctx.DereferenceStreamDict(ref)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve image %d: %w", ref.ObjectNumber.Value(), err)
		}
		if sd == nil {
			return nil, fmt.Errorf("image %d: %w", ref.ObjectNumber.Value(), document.ErrNotFound)
		}
		img, err := decodeImageStream(d.ctx, sd)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image %d: %w", ref.ObjectNumber.Value(), err)
		}
		return img, nil
	})
}

// decodeImageStream supports DCTDecode (as the sole filter) and 8 bit
// DeviceGray, DeviceRGB, DeviceCMYK or ICCBased samples behind any filter
// pdfcpu decodes.
func decodeImageStream(ctx *model.Context, sd *types.StreamDict) (image.Image, error) {
	filters := sd.FilterPipeline
	if n := len(filters); n > 0 {
		switch filters[n-1].Name {
		case "DCTDecode":
			if n > 1 {
				return nil, fmt.Errorf("unsupported filter chain ending in DCTDecode")
			}
			data := sd.Raw
			if len(data) == 0 {
				if err := sd.Decode(); err != nil {
					return nil, err
				}
				data = sd.Content
			}
			return jpeg.Decode(bytes.NewReader(data))
		case "JPXDecode", "JBIG2Decode", "CCITTFaxDecode":
			return nil, fmt.Errorf("unsupported image filter %s", filters[n-1].Name)
		}
	}

	w, h := sd.IntEntry("Width"), sd.IntEntry("Height")
	if w == nil || h == nil || *w <= 0 || *h <= 0 {
		return nil, fmt.Errorf("missing image dimensions")
	}
	if bpc := sd.IntEntry("BitsPerComponent"); bpc != nil && *bpc != 8 {
		return nil, fmt.Errorf("unsupported bits per component %d", *bpc)
	}

	components, err := colorComponents(ctx, sd.Dict)
	if err != nil {
		return nil, err
	}

	if err := sd.Decode(); err != nil {
		return nil, err
	}
	return samplesToImage(sd.Content, *w, *h, components)
}

// colorComponents returns the number of samples per pixel of an image's
// color space.
func colorComponents(ctx *model.Context, d types.Dict) (int, error) {
	obj, found := d.Find("ColorSpace")
	if !found {
		return 0, fmt.Errorf("missing color space")
	}
	obj, err := ctx.Dereference(obj)
	if err != nil {
		return 0, err
	}

	switch v := obj.(type) {
	case types.Name:
		return deviceComponents(string(v))
	case types.Array:
		if len(v) < 2 {
			break
		}
		family, ok := v[0].(types.Name)
		if !ok || family != "ICCBased" {
			break
		}
		icc, _, err := ctx.DereferenceStreamDict(v[1])
		if err != nil || icc == nil {
			return 0, fmt.Errorf("failed to resolve ICC profile: %v", err)
		}
		if n := icc.IntEntry("N"); n != nil {
			return *n, nil
		}
	}
	return 0, fmt.Errorf("unsupported color space %s", obj)
}

func deviceComponents(name string) (int, error) {
	switch name {
	case "DeviceGray", "CalGray", "G":
		return 1, nil
	case "DeviceRGB", "CalRGB", "RGB":
		return 3, nil
	case "DeviceCMYK", "CMYK":
		return 4, nil
	}
	return 0, fmt.Errorf("unsupported color space %s", name)
}

func samplesToImage(data []byte, w, h, components int) (image.Image, error) {
	if need := w * h * components; len(data) < need {
		return nil, fmt.Errorf("image data too short: have %d bytes, need %d", len(data), need)
	}
	rect := image.Rect(0, 0, w, h)

	switch components {
	case 1:
		img := image.NewGray(rect)
		copy(img.Pix, data)
		return img, nil
	case 3:
		img := image.NewNRGBA(rect)
		for i := 0; i < w*h; i++ {
			img.Pix[i*4] = data[i*3]
			img.Pix[i*4+1] = data[i*3+1]
			img.Pix[i*4+2] = data[i*3+2]
			img.Pix[i*4+3] = 0xff
		}
		return img, nil
	case 4:
		img := image.NewCMYK(rect)
		copy(img.Pix, data)
		return img, nil
	}
	return nil, fmt.Errorf("unsupported component count %d", components)
}

// EmbeddedImages decodes the image XObjects in the page's resources, sorted
// by resource name. Images that cannot be decoded are logged and skipped.
func (p *Page) EmbeddedImages() ([]document.EmbeddedImage, error) {
	if p.resources == nil {
		return nil, nil
	}
	obj, found := p.resources.Find("XObject")
	if !found {
		return nil, nil
	}
	xobjects, err := p.doc.ctx.DereferenceDict(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve XObject resources of page %d: %w", p.index+1, err)
	}

	names := make([]string, 0, len(xobjects))
	for name := range xobjects {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []document.EmbeddedImage
	for _, name := range names {
		ref, sd, err := lookupXObject(p.doc.ctx, p.resources, name)
		if err != nil {
			return nil, err
		}
		if sd == nil {
			continue
		}
		if st := sd.NameEntry("Subtype"); st == nil || *st != "Image" {
			continue
		}

		img, err := p.doc.decodeImage(ref)
		if err != nil {
			p.doc.log.WithFields(logrus.Fields{
				"page":    p.index + 1,
				"xobject": name,
			}).WithError(err).Warn("skipping undecodable image")
			continue
		}
		out = append(out, document.EmbeddedImage{XRef: ref.ObjectNumber.Value(), Image: img})
	}
	return out, nil
}
