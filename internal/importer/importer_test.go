package importer

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlens-dev/finlens/internal/model"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<result>
  <list>
    <corp_code>00126380</corp_code>
    <corp_name>삼성전자</corp_name>
    <corp_eng_name>SAMSUNG ELECTRONICS CO,.LTD</corp_eng_name>
    <stock_code>005930</stock_code>
    <modify_date>20240101</modify_date>
  </list>
  <list>
    <corp_code>00434003</corp_code>
    <corp_name>다코</corp_name>
    <stock_code> </stock_code>
    <modify_date>20170630</modify_date>
  </list>
</result>`

func zipOf(t *testing.T, name, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = w.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestXMLParser(t *testing.T) {
	corps, err := (&XMLParser{}).Parse(strings.NewReader(sampleXML))
	require.NoError(t, err)
	require.Len(t, corps, 2)
	assert.Equal(t, model.Corp{Code: "00126380", Name: "삼성전자", StockCode: "005930", ModifyDate: "20240101"}, corps[0])
	assert.Equal(t, "", corps[1].StockCode)
	assert.False(t, corps[1].Listed())
}

func TestXMLParserErrors(t *testing.T) {
	_, err := (&XMLParser{}).Parse(strings.NewReader(`<result><list><corp_name>x</corp_name></list></result>`))
	assert.ErrorContains(t, err, "missing corp_code")

	_, err = (&XMLParser{}).Parse(strings.NewReader(`<result><list>`))
	assert.Error(t, err)
}

func TestZipParser(t *testing.T) {
	data := zipOf(t, "CORPCODE.xml", sampleXML)
	corps, err := (&ZipParser{}).Parse(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Len(t, corps, 2)

	_, err = (&ZipParser{}).Parse(bytes.NewReader(zipOf(t, "other.xml", sampleXML)))
	assert.ErrorContains(t, err, "CORPCODE.xml not found")

	_, err = (&ZipParser{}).Parse(strings.NewReader("not a zip"))
	assert.Error(t, err)
}

func TestJSONParser(t *testing.T) {
	corps, err := (&JSONParser{}).Parse(strings.NewReader(
		`{"list":[{"corp_code":" 00126380 ","corp_name":"삼성전자","stock_code":"005930","modify_date":"20240101"}]}`))
	require.NoError(t, err)
	require.Len(t, corps, 1)
	assert.Equal(t, "00126380", corps[0].Code)

	_, err = (&JSONParser{}).Parse(strings.NewReader(`{"list":[{"corp_name":"x"}]}`))
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"json", "xml", "zip"}, r.Formats())
	assert.NotNil(t, r.Get("XML"))
	assert.Nil(t, r.Get("csv"))
	assert.Panics(t, func() { r.Register(&XMLParser{}) })
}

func TestScanAndParseFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "corpCode.zip"), zipOf(t, "CORPCODE.xml", sampleXML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.xml"), 0o755))

	r := DefaultRegistry()
	files, err := r.Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "corpCode.zip", files[0].Name)
	assert.Equal(t, "zip", files[0].Format)

	corps, err := r.ParseFile(files[0].Path)
	require.NoError(t, err)
	assert.Len(t, corps, 2)

	_, err = r.ParseFile(filepath.Join(dir, "notes.txt"))
	assert.ErrorContains(t, err, "no parser")

	missing, err := r.Scan(filepath.Join(dir, "nope"))
	require.NoError(t, err)
	assert.Empty(t, missing)
}
