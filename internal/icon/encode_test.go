package icon

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/hues/internal/colors"
)

func TestParseShape(t *testing.T) {
	require.Equal(t, Square, ParseShape("square"))
	require.Equal(t, Fill, ParseShape(" FILL "))
	require.Equal(t, Circle, ParseShape("circle"))
	require.Equal(t, Circle, ParseShape("hexagon"))
	require.Equal(t, Circle, ParseShape(""))
}

func TestTemplates_Decompress(t *testing.T) {
	for _, shape := range Shapes {
		data, err := template(shape)
		require.NoError(t, err, shape)
		require.Len(t, data, rawSize, shape)
		require.True(t, bytes.Contains(data, mainSentinel[:]), shape)
		require.True(t, bytes.Contains(data, edgeSentinel[:]), shape)
	}
}

func TestTint(t *testing.T) {
	opaque := colors.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 0xff}
	main, edge := Tint(opaque, Light)
	require.Equal(t, [3]byte{0x33, 0x66, 0x99}, main)
	require.Equal(t, [3]byte{0x33, 0x66, 0x99}, edge)

	transparent := colors.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 0}
	main, edge = Tint(transparent, Light)
	require.Equal(t, [3]byte{0xff, 0xff, 0xff}, main)
	require.Equal(t, [3]byte{0xcc, 0xcc, 0xcc}, edge)

	main, edge = Tint(transparent, Dark)
	require.Equal(t, [3]byte{0x99, 0x99, 0x99}, main)
	require.Equal(t, [3]byte{0x66, 0x66, 0x66}, edge)
}

func TestSubstitute_SinglePass(t *testing.T) {
	tmpl := []byte{0x00, 0x1f, 0x2f, 0x3f, 0x1f, 0x2f, 0x3f, 0x4f, 0x5f, 0x6f}
	// main becomes the edge sentinel, which must not be replaced again
	out := substitute(tmpl, edgeSentinel, [3]byte{1, 2, 3})
	require.Equal(t, []byte{0x00, 0x4f, 0x5f, 0x6f, 0x4f, 0x5f, 0x6f, 1, 2, 3}, out)
	require.Equal(t, byte(0x1f), tmpl[1], "template is not modified")
}

func TestEncode_ValidPNG(t *testing.T) {
	c := colors.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 0xff}
	data, err := Encode(c, Square, Light)
	require.NoError(t, err)

	require.True(t, bytes.HasPrefix(data, append(append([]byte{}, pngSignature...), pngHeader...)))
	require.True(t, bytes.HasSuffix(data, pngEnd))

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, Size, img.Bounds().Dx())
	require.Equal(t, Size, img.Bounds().Dy())

	// the square template has a main pixel at (6,6) and an edge pixel at (16,6)
	r, g, b, a := img.At(6, 6).RGBA()
	require.Equal(t, []uint32{0x33, 0x66, 0x99, 0xff}, []uint32{r >> 8, g >> 8, b >> 8, a >> 8})
	r, g, b, _ = img.At(16, 6).RGBA()
	require.Equal(t, []uint32{0x33, 0x66, 0x99}, []uint32{r >> 8, g >> 8, b >> 8})
}

func TestEncode_CircleCenterUsesDarkBackdrop(t *testing.T) {
	c := colors.RGBA{R: 0, G: 0, B: 0, A: 0}
	data, err := Encode(c, Circle, Dark)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	r, g, b, _ := img.At(16, 16).RGBA()
	require.Equal(t, []uint32{0x99, 0x99, 0x99}, []uint32{r >> 8, g >> 8, b >> 8})
}

func TestEncode_Deterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := colors.RGBA{
			R: rapid.Uint8().Draw(t, "r"),
			G: rapid.Uint8().Draw(t, "g"),
			B: rapid.Uint8().Draw(t, "b"),
			A: rapid.Uint8().Draw(t, "a"),
		}
		shape := rapid.SampledFrom(Shapes).Draw(t, "shape")
		backdrop := rapid.SampledFrom([]Backdrop{Light, Dark}).Draw(t, "backdrop")

		first, err := Encode(c, shape, backdrop)
		if err != nil {
			t.Fatal(err)
		}
		second, err := Encode(c, shape, backdrop)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first, second) {
			t.Fatalf("encoding %s is not deterministic", c)
		}
		if _, err := png.Decode(bytes.NewReader(first)); err != nil {
			t.Fatalf("invalid png for %s: %v", c, err)
		}
	})
}

func TestBackdrop(t *testing.T) {
	require.Equal(t, Light, ParseBackdrop("light"))
	require.Equal(t, Dark, ParseBackdrop("dark"))
	require.Equal(t, Auto, ParseBackdrop("auto"))
	require.Equal(t, Light, ParseBackdrop("sepia"))

	require.Equal(t, Dark, Dark.For("#FFFFFFFF"))
	require.Equal(t, Light, Auto.For("#FFFFFFFF"))
	require.Equal(t, Dark, Auto.For("#272822FF"))
	require.Equal(t, Light, Auto.For(""))
}
