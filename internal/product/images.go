package product

const fallbackImage = "https://images.unsplash.com/photo-1542838132-92c53300491e?w=400&h=300&fit=crop"

var productImages = map[string]string{
	"Apple":   "https://images.unsplash.com/photo-1560806887-1e4cd0b6cbd6?w=400&h=300&fit=crop",
	"Banana":  "https://images.unsplash.com/photo-1571771894821-ce9b6c11b08e?w=400&h=300&fit=crop",
	"Orange":  "https://images.unsplash.com/photo-1547036967-23d11aacaee0?w=400&h=300&fit=crop",
	"Tomato":  "https://images.unsplash.com/photo-1546094096-0df4bcaaa337?w=400&h=300&fit=crop",
	"Carrot":  "https://images.unsplash.com/photo-1445282768818-728615cc910a?w=400&h=300&fit=crop",
	"Potato":  "https://images.unsplash.com/photo-1518977676601-b53f82aba655?w=400&h=300&fit=crop",
	"Chicken": "https://images.unsplash.com/photo-1548550023-2bdb3c5beed7?w=400&h=300&fit=crop",
	"Cow":     "https://images.unsplash.com/photo-1516467508483-a7212febe31a?w=400&h=300&fit=crop",
	"Eggs":    "https://images.unsplash.com/photo-1582722872445-44dc5f7e3c8f?w=400&h=300&fit=crop",
}

// ImageFor returns the display image for a product name, or the generic produce photo.
func ImageFor(name string) string {
	if u, ok := productImages[name]; ok {
		return u
	}
	return fallbackImage
}

// WithImage returns p with ImageURL resolved.
func WithImage(p Product) Product {
	p.ImageURL = ImageFor(p.Name)
	return p
}

// WithImages resolves ImageURL on every product in place.
func WithImages(ps []Product) []Product {
	for i := range ps {
		ps[i].ImageURL = ImageFor(ps[i].Name)
	}
	return ps
}
