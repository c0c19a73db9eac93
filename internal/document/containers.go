package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/lukasjarosch/go-docx"
)

const docxBody = "word/document.xml"

// pdfText extracts the text of every page. The PDF parser panics on some
// malformed inputs, which is reported as an error.
func pdfText(data []byte) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed pdf: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}

	out, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	return string(out), nil
}

// docxText returns the paragraphs of the main document part, one per line.
func docxText(data []byte) (string, error) {
	body, err := docxBodyXML(data)
	if err != nil {
		return "", err
	}
	return wordprocessingText(body)
}

func docxBodyXML(data []byte) ([]byte, error) {
	doc, err := docx.OpenBytes(data)
	if err == nil {
		defer doc.Close()
		if body := doc.GetFile(docxBody); len(body) > 0 {
			return body, nil
		}
	}

	// go-docx could not load the document; read the part straight from the archive.
	archive, zipErr := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if zipErr != nil {
		return nil, fmt.Errorf("opening docx: %w", errors.Join(err, zipErr))
	}
	for _, file := range archive.File {
		if file.Name != docxBody {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", docxBody, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("docx has no %s", docxBody)
}

// wordprocessingText walks WordprocessingML and keeps the content of w:t
// elements, turning paragraphs into lines and tabs and breaks into
// whitespace.
func wordprocessingText(body []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))

	var (
		out    strings.Builder
		inText bool
	)

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parsing %s: %w", docxBody, err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				out.WriteByte('\t')
			case "br", "cr":
				out.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				out.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				out.Write(t)
			}
		}
	}

	return out.String(), nil
}
