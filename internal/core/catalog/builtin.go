package catalog

// Keys of the built-in levels.
const (
	KeyTutorial    = "tutorial"
	KeyNewsletter  = "newsletter"
	KeyFeatures    = "features"
	KeyLanding     = "landing"
	KeyFormModal   = "form-modal"
	KeyAntiGravity = "anti-gravity"
)

// Builtin returns the stock level set.
func Builtin() *Catalog {
	c, err := New(
		Level{
			ID:   0,
			Key:  KeyTutorial,
			Name: "Tutorial",
			Pieces: []PieceSpec{
				{ID: "header", X: 350, Y: 200, W: 500, H: 100},
				{ID: "button", X: 450, Y: 350, W: 200, H: 80},
			},
		},
		Level{
			ID:   1,
			Key:  KeyNewsletter,
			Name: "Newsletter Card",
			Pieces: []PieceSpec{
				{ID: "icon", X: 320, Y: 170, W: 48, H: 48},
				{ID: "title", X: 320, Y: 240, W: 360, H: 60},
				{ID: "subtitle", X: 320, Y: 320, W: 360, H: 40},
				{ID: "email-input", X: 320, Y: 380, W: 240, H: 48},
				{ID: "subscribe-btn", X: 580, Y: 380, W: 100, H: 48},
				{ID: "privacy-note", X: 320, Y: 450, W: 360, H: 30},
			},
		},
		Level{
			ID:   2,
			Key:  KeyFeatures,
			Name: "Two-Column Feature Section",
			Pieces: []PieceSpec{
				{ID: "heading", X: 240, Y: 150, W: 260, H: 60},
				{ID: "bullet-1", X: 240, Y: 230, W: 260, H: 40},
				{ID: "bullet-2", X: 240, Y: 290, W: 260, H: 40},
				{ID: "bullet-3", X: 240, Y: 350, W: 260, H: 40},
				{ID: "learn-more-btn", X: 240, Y: 420, W: 140, H: 48},
				{ID: "hero-image", X: 540, Y: 200, W: 220, H: 280},
				{ID: "decorative-accent", X: 450, Y: 80, W: 60, H: 60},
			},
		},
		Level{
			ID:   3,
			Key:  KeyLanding,
			Name: "Navbar, Hero and Footer",
			Pieces: []PieceSpec{
				{ID: "logo", X: 80, Y: 30, W: 120, H: 40},
				{ID: "nav-home", X: 560, Y: 36, W: 80, H: 28},
				{ID: "nav-about", X: 660, Y: 36, W: 80, H: 28},
				{ID: "nav-pricing", X: 760, Y: 36, W: 90, H: 28},
				{ID: "nav-cta", X: 880, Y: 30, W: 120, H: 40},
				{ID: "hero-title", X: 200, Y: 180, W: 680, H: 80},
				{ID: "hero-subtitle", X: 260, Y: 280, W: 560, H: 40},
				{ID: "hero-primary-btn", X: 340, Y: 350, W: 180, H: 52},
				{ID: "hero-secondary-btn", X: 560, Y: 350, W: 180, H: 52},
				{ID: "footer-links", X: 80, Y: 620, W: 420, H: 30},
				{ID: "footer-social", X: 700, Y: 620, W: 180, H: 30},
				{ID: "footer-copyright", X: 380, Y: 670, W: 320, H: 24},
			},
		},
		Level{
			ID:   4,
			Key:  KeyFormModal,
			Name: "Sign-up Form Modal",
			Pieces: []PieceSpec{
				{ID: "neon-header", X: 300, Y: 20, W: 480, H: 60},
				{ID: "modal-backdrop", X: 240, Y: 100, W: 600, H: 24},
				{ID: "modal-container", X: 340, Y: 140, W: 400, H: 20},
				{ID: "modal-title", X: 360, Y: 180, W: 360, H: 44},
				{ID: "name-input", X: 360, Y: 240, W: 360, H: 44},
				{ID: "email-input", X: 360, Y: 300, W: 360, H: 44},
				{ID: "password-input", X: 360, Y: 360, W: 360, H: 44},
				{ID: "submit-btn", X: 360, Y: 430, W: 170, H: 48},
				{ID: "cancel-btn", X: 550, Y: 430, W: 170, H: 48},
			},
		},
		Level{
			ID:        5,
			Key:       KeyAntiGravity,
			Name:      "Anti-Gravity",
			Repulsion: true,
			Pieces: []PieceSpec{
				{ID: "badge", X: 460, Y: 160, W: 160, H: 40},
				{ID: "headline", X: 300, Y: 240, W: 480, H: 70},
				{ID: "cta", X: 440, Y: 350, W: 200, H: 56},
			},
		},
	)
	if err != nil {
		panic(err)
	}
	return c
}
