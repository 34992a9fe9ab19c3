//go:build !windows

package parser

/*
#cgo LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>

void* load_ts_lang(const char* path, const char* name) {
    void* handle = dlopen(path, RTLD_LAZY);
    if (!handle) return NULL;
    return dlsym(handle, name);
}
*/
import "C"
import (
	"unsafe"

	"hlsense/internal/core/errors"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// loadDynamic resolves tree_sitter_<name> from the shared object at path.
func loadDynamic(path, name string) (*sitter.Language, error) {
	symbol := "tree_sitter_" + name
	cPath := C.CString(path)
	cSymbol := C.CString(symbol)
	defer C.free(unsafe.Pointer(cPath))
	defer C.free(unsafe.Pointer(cSymbol))

	ptr := C.load_ts_lang(cPath, cSymbol)
	if ptr == nil {
		err := errors.Newf(errors.CodeInternal, "failed to load %s", symbol)
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	return sitter.NewLanguage(ptr), nil
}
