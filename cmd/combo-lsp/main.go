// SPDX-License-Identifier: Apache-2.0
package main

import (
	"log"
	"os"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"combo/internal/lsp"
)

const lsName = "combo"

var (
	version = "0.0.1"
	handler protocol.Handler
)

func main() {
	commonlog.Configure(1, nil)

	comboHandler := lsp.NewComboHandler()

	handler = protocol.Handler{
		Initialize:            comboHandler.Initialize,
		Initialized:           comboHandler.Initialized,
		Shutdown:              comboHandler.Shutdown,
		TextDocumentDidOpen:   comboHandler.TextDocumentDidOpen,
		TextDocumentDidClose:  comboHandler.TextDocumentDidClose,
		TextDocumentDidChange: comboHandler.TextDocumentDidChange,
		TextDocumentHover:     comboHandler.TextDocumentHover,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Println("Starting combo LSP server...")

	if err := s.RunStdio(); err != nil {
		log.Println("Error starting combo LSP server:", err)
		os.Exit(1)
	}
}
