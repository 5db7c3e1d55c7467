package domain

type ToolKind string

const (
	ToolOCR    ToolKind = "ocr"
	ToolMath   ToolKind = "math"
	ToolSketch ToolKind = "sketch"
	ToolSpeech ToolKind = "speech"
	ToolPDF    ToolKind = "pdf"
)

type OCRMode string

const (
	OCRModeStandard     OCRMode = "standard"
	OCRModeHighAccuracy OCRMode = "high_accuracy"
)

// PDFOp names a backend PDF tool endpoint.
type PDFOp string

const (
	PDFMerge      PDFOp = "merge"
	PDFCompress   PDFOp = "compress"
	PDFSplit      PDFOp = "split"
	PDFImageToPDF PDFOp = "image-to-pdf"
	PDFConvert    PDFOp = "convert"
	PDFUnlock     PDFOp = "unlock"
	PDFRotate     PDFOp = "rotate"
	PDFProtect    PDFOp = "protect"
	PDFRedact     PDFOp = "redact"
)
