package morph

import "strings"

var imageOutputs = setOf(
	"png", "jpg", "jpeg", "jpe", "jfif", "webp", "avif", "heic", "heif", "tiff", "tif",
	"gif", "jxl", "jp2", "j2k", "jpc", "jpt", "j2c", "hdr", "ppm", "pgm", "pbm", "pfm",
	"pnm", "fits", "fit", "fts", "bmp", "ico", "psd", "tga", "pcx", "pdf", "eps", "dds",
)

var mediaOutputs = setOf(
	"mp4", "mkv", "mov", "avi", "mp3", "wav", "flac", "ogg", "m4a", "aac", "webm", "opus",
	"m4v", "ts", "mts", "flv", "gif", "mpg", "mpeg", "vob", "ogv", "oga", "wv", "ac3", "dts",
	"aiff", "au", "amr", "3gp", "3g2", "mka", "mxf", "asf", "wmv", "rm", "rmvb", "adts", "spx",
)

var docOutputs = setOf(
	"md", "markdown", "txt", "html", "htm", "docx", "odt", "epub", "latex", "tex", "rst",
	"rtf", "org", "wiki", "textile", "fb2", "ipynb", "jira", "opml", "json", "typst", "djot",
	"man", "pdf", "pptx", "beamer", "icml", "tei", "texinfo", "context", "ms", "adoc", "asciidoc",
)

// folderDocInputs are the document sources folder aggregation renders to PDF.
var folderDocInputs = setOf(
	"md", "txt", "html", "htm", "docx", "odt", "epub", "tex", "rst", "rtf", "org",
	"textile", "ipynb", "typst",
)

// vectorSources are rendered at a fixed DPI and scale when rasterized.
var vectorSources = setOf("svg", "svgz", "eps", "ai", "pdf")

var documentReaders = map[string]string{
	"html": "html", "htm": "html",
	"docx": "docx", "odt": "odt", "epub": "epub",
	"latex": "latex", "tex": "latex",
	"rst": "rst", "rtf": "rtf", "org": "org",
	"wiki": "mediawiki", "textile": "textile", "fb2": "fb2", "ipynb": "ipynb",
	"jira": "jira", "opml": "opml", "json": "json", "typst": "typst", "djot": "djot",
	"csv": "csv", "tsv": "tsv", "t2t": "t2t", "creole": "creole", "twiki": "twiki",
	"man": "man", "1": "man", "2": "man", "3": "man", "4": "man", "5": "man",
	"6": "man", "7": "man", "8": "man", "9": "man",
	"xml": "docbook",
}

func setOf(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, item := range items {
		m[item] = struct{}{}
	}
	return m
}

func contains(set map[string]struct{}, ext string) bool {
	_, ok := set[ext]
	return ok
}

// IsImageOutput reports whether the rasterizer can produce ext.
func IsImageOutput(ext string) bool { return contains(imageOutputs, ext) }

// IsMediaOutput reports whether the transcoder can produce ext.
func IsMediaOutput(ext string) bool { return contains(mediaOutputs, ext) }

// IsDocOutput reports whether the document converter can produce ext.
func IsDocOutput(ext string) bool { return contains(docOutputs, ext) }

// IsFolderDocInput reports whether a folder child with source extension ext is
// rendered into an aggregated PDF.
func IsFolderDocInput(ext string) bool { return contains(folderDocInputs, ext) }

// IsVectorSource reports whether ext is rendered at a fixed DPI when rasterized.
func IsVectorSource(ext string) bool { return contains(vectorSources, ext) }

// IsRasterTarget reports whether ext is an image output that is neither PDF nor EPS.
func IsRasterTarget(ext string) bool {
	return IsImageOutput(ext) && ext != "pdf" && ext != "eps"
}

// DocumentReader maps a source extension to the document converter's input format.
func DocumentReader(sourceExt string) string {
	if from, ok := documentReaders[sourceExt]; ok {
		return from
	}
	return "markdown"
}

// IsImageFamily covers raster images, PostScript and PDF.
func IsImageFamily(mime string) bool {
	return strings.HasPrefix(mime, "image/") || mime == "application/postscript" || mime == "application/pdf"
}

// IsMediaFamily covers audio and video.
func IsMediaFamily(mime string) bool {
	return strings.HasPrefix(mime, "video/") || strings.HasPrefix(mime, "audio/")
}

// IsDocumentFamily covers text, office, ebook and JSON content.
func IsDocumentFamily(mime string) bool {
	return strings.HasPrefix(mime, "text/") ||
		mime == "application/pdf" ||
		strings.Contains(mime, "officedocument") ||
		strings.HasPrefix(mime, "application/vnd.oasis.opendocument") ||
		strings.HasPrefix(mime, "application/epub") ||
		mime == "application/rtf" ||
		mime == "application/json"
}

// IsValidTarget routes a content type to the outputs the dispatcher will produce
// for it. Unknown source families are rejected.
func IsValidTarget(mime, targetExt string) bool {
	switch {
	case IsImageFamily(mime):
		return IsImageOutput(targetExt) || IsDocOutput(targetExt)
	case strings.HasPrefix(mime, "video/"):
		return IsMediaOutput(targetExt) || IsImageOutput(targetExt)
	case strings.HasPrefix(mime, "audio/"):
		return IsMediaOutput(targetExt)
	case IsDocumentFamily(mime):
		return IsDocOutput(targetExt)
	}
	return false
}

// SourceExtFromMIME derives a canonical extension from a content type alone.
func SourceExtFromMIME(mime string) string {
	switch {
	case mime == "application/pdf":
		return "pdf"
	case strings.HasPrefix(mime, "image/"):
		return "png"
	case strings.HasPrefix(mime, "video/"):
		return "mp4"
	case strings.HasPrefix(mime, "audio/"):
		return "mp3"
	case strings.Contains(mime, "officedocument.wordprocessingml.document"):
		return "docx"
	case mime == "application/vnd.oasis.opendocument.text":
		return "odt"
	case strings.HasPrefix(mime, "application/epub"):
		return "epub"
	case mime == "text/html":
		return "html"
	case strings.HasPrefix(mime, "text/"):
		return "md"
	case mime == "application/rtf":
		return "rtf"
	case mime == "application/json":
		return "json"
	}
	return ""
}
