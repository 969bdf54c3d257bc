// Copyright 2026 VoidLight
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package capability

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/klippa-app/go-pdfium/webassembly"
)

func defaultProbes() map[string]ProbeFunc {
	return map[string]ProbeFunc{
		BackendPDFium:    probePDFium,
		BackendTesseract: binaryProbe("tesseract", "--version"),
		BackendMecab:     binaryProbe("mecab", "--version"),
		BackendKomoran:   probeKomoran,
	}
}

// binaryProbe checks that a binary resolves on PATH and survives a smoke
// invocation.
func binaryProbe(name string, smokeArgs ...string) ProbeFunc {
	return func() (Status, string) {
		path, err := exec.LookPath(name)
		if err != nil {
			return StatusAbsent, fmt.Sprintf("%s not found in PATH", name)
		}
		if err := exec.Command(path, smokeArgs...).Run(); err != nil {
			return StatusNonfunctional, fmt.Sprintf("%s %v failed: %v", path, smokeArgs, err)
		}
		return StatusFunctional, path
	}
}

// probePDFium initializes a throwaway PDFium WebAssembly instance. The
// module ships with the binary, so it is never absent, only possibly
// nonfunctional on platforms where the wasm runtime cannot start.
func probePDFium() (Status, string) {
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  0,
		MaxIdle:  1,
		MaxTotal: 1,
	})
	if err != nil {
		return StatusNonfunctional, fmt.Sprintf("wasm init failed: %v", err)
	}
	defer pool.Close()

	instance, err := pool.GetInstance(5 * time.Second)
	if err != nil {
		return StatusNonfunctional, fmt.Sprintf("wasm instance failed: %v", err)
	}
	instance.Close()
	return StatusFunctional, "webassembly"
}

// probeKomoran needs both a Java runtime and the KOMORAN jar.
func probeKomoran() (Status, string) {
	jar := os.Getenv("KOMORAN_JAR")
	if jar == "" {
		return StatusAbsent, "KOMORAN_JAR is not set"
	}
	if _, err := os.Stat(jar); err != nil {
		return StatusAbsent, fmt.Sprintf("KOMORAN_JAR %q: %v", jar, err)
	}
	javaPath, err := exec.LookPath("java")
	if err != nil {
		return StatusAbsent, "java not found in PATH"
	}
	if err := exec.Command(javaPath, "-version").Run(); err != nil {
		return StatusNonfunctional, fmt.Sprintf("java -version failed: %v", err)
	}
	return StatusFunctional, jar
}
