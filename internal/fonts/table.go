package fonts

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
)

// Style selects one of the four variants of a family.
type Style string

const (
	Normal     Style = "normal"
	Bold       Style = "bold"
	Italic     Style = "italic"
	BoldItalic Style = "bold_italic"
)

// StyleKey maps the bold/italic flags to a style.
func StyleKey(bold, italic bool) Style {
	switch {
	case bold && italic:
		return BoldItalic
	case bold:
		return Bold
	case italic:
		return Italic
	default:
		return Normal
	}
}

// families lists candidate font files per family and style, most specific first.
// Windows and macOS names come first, then metric-compatible Linux fonts.
var families = map[string]map[Style][]string{
	"Arial": {
		Normal:     {"arial.ttf", "Arial.ttf", "LiberationSans-Regular.ttf", "DejaVuSans.ttf"},
		Bold:       {"arialbd.ttf", "Arial Bold.ttf", "LiberationSans-Bold.ttf", "DejaVuSans-Bold.ttf"},
		Italic:     {"ariali.ttf", "Arial Italic.ttf", "LiberationSans-Italic.ttf", "DejaVuSans-Oblique.ttf"},
		BoldItalic: {"arialbi.ttf", "Arial Bold Italic.ttf", "LiberationSans-BoldItalic.ttf", "DejaVuSans-BoldOblique.ttf"},
	},
	"Times New Roman": {
		Normal:     {"times.ttf", "Times New Roman.ttf", "LiberationSerif-Regular.ttf", "DejaVuSerif.ttf"},
		Bold:       {"timesbd.ttf", "Times New Roman Bold.ttf", "LiberationSerif-Bold.ttf", "DejaVuSerif-Bold.ttf"},
		Italic:     {"timesi.ttf", "Times New Roman Italic.ttf", "LiberationSerif-Italic.ttf", "DejaVuSerif-Italic.ttf"},
		BoldItalic: {"timesbi.ttf", "Times New Roman Bold Italic.ttf", "LiberationSerif-BoldItalic.ttf", "DejaVuSerif-BoldItalic.ttf"},
	},
	"SimHei": {
		Normal:     {"simhei.ttf", "SimHei.ttf", "wqy-zenhei.ttc"},
		Bold:       {"simhei.ttf", "SimHei.ttf", "wqy-zenhei.ttc"},
		Italic:     {"simhei.ttf", "SimHei.ttf", "wqy-zenhei.ttc"},
		BoldItalic: {"simhei.ttf", "SimHei.ttf", "wqy-zenhei.ttc"},
	},
	"Microsoft YaHei": {
		Normal:     {"msyh.ttc", "msyh.ttf", "wqy-microhei.ttc"},
		Bold:       {"msyhbd.ttc", "msyhbd.ttf", "wqy-microhei.ttc"},
		Italic:     {"msyh.ttc", "msyh.ttf", "wqy-microhei.ttc"},
		BoldItalic: {"msyhbd.ttc", "msyhbd.ttf", "wqy-microhei.ttc"},
	},
	"SimSun": {
		Normal:     {"simsun.ttc", "simsun.ttf", "NotoSerifCJK-Regular.ttc"},
		Bold:       {"simsun.ttc", "simsun.ttf", "NotoSerifCJK-Bold.ttc"},
		Italic:     {"simsun.ttc", "simsun.ttf", "NotoSerifCJK-Regular.ttc"},
		BoldItalic: {"simsun.ttc", "simsun.ttf", "NotoSerifCJK-Bold.ttc"},
	},
}

// noNativeItalic holds families whose italic is faked with a shear.
var noNativeItalic = map[string]bool{
	"SimHei":          true,
	"Microsoft YaHei": true,
	"SimSun":          true,
}

// Families returns the known family names, sorted.
func Families() []string {
	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultDirs returns the system font directories for the running OS, in search order.
func DefaultDirs() []string {
	home, _ := os.UserHomeDir()

	switch runtime.GOOS {
	case "windows":
		windir := os.Getenv("WINDIR")
		if windir == "" {
			windir = `C:\Windows`
		}
		dirs := []string{filepath.Join(windir, "Fonts")}
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			dirs = append(dirs, filepath.Join(local, "Microsoft", "Windows", "Fonts"))
		}
		return dirs
	case "darwin":
		return []string{
			"/System/Library/Fonts",
			"/System/Library/Fonts/Supplemental",
			"/Library/Fonts",
			filepath.Join(home, "Library", "Fonts"),
		}
	default:
		return []string{
			"/usr/share/fonts/truetype/msttcorefonts",
			"/usr/share/fonts/truetype/liberation",
			"/usr/share/fonts/truetype/liberation2",
			"/usr/share/fonts/truetype/dejavu",
			"/usr/share/fonts/truetype/wqy",
			"/usr/share/fonts/opentype/noto",
			"/usr/share/fonts/TTF",
			"/usr/share/fonts",
			filepath.Join(home, ".local", "share", "fonts"),
			filepath.Join(home, ".fonts"),
		}
	}
}
