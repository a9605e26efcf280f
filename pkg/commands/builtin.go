package commands

import "github.com/davidthor/chainctl/pkg/workflow"

// Built-in node types.
const (
	TypeImport                  workflow.NodeType = "import"
	TypeCleanModel              workflow.NodeType = "cleanModel"
	TypeCreateView              workflow.NodeType = "createView"
	TypeAddModelToView          workflow.NodeType = "addModelToView"
	TypeRemoveModelFromView     workflow.NodeType = "removeModelFromView"
	TypeDeleteModelsFromView    workflow.NodeType = "deleteModelsFromView"
	TypeCreateSharedModel       workflow.NodeType = "createSharedModel"
	TypeTriangulateManualOption workflow.NodeType = "triangulateManualOption"
	TypeTinFunction             workflow.NodeType = "tinFunction"
	TypeIfFunctionExists        workflow.NodeType = "ifFunctionExists"
	TypeRunFunction             workflow.NodeType = "runFunction"
	TypeAddComment              workflow.NodeType = "addComment"
	TypeAddLabel                workflow.NodeType = "addLabel"
	TypeRenameModel             workflow.NodeType = "renameModel"
	TypeApplyAttrManipulators   workflow.NodeType = "applyAttrManipulators"
	TypeCreateTemplateFile      workflow.NodeType = "createTemplateFile"
	TypeCreateAttrManipulators  workflow.NodeType = "createAttrManipulatorFiles"
	TypeRunChain                workflow.NodeType = "runChain"
	TypeCreateTrimeshFromTin    workflow.NodeType = "createTrimeshFromTin"
	TypeVolumeTinToTin          workflow.NodeType = "volumeTinToTin"
	TypeGetTotalSurfaceArea     workflow.NodeType = "getTotalSurfaceArea"
	TypeTrimeshVolumeReport     workflow.NodeType = "trimeshVolumeReport"
	TypeCreateMtfFile           workflow.NodeType = "createMtfFile"
	TypeApplyMtf                workflow.NodeType = "applyMtf"

	// TypeLabel is the older palette name of addLabel.
	TypeLabel workflow.NodeType = "label"
)

func registerBuiltins(r *Registry) {
	r.MustRegister(TypeImport, importer{})
	r.MustRegister(TypeCleanModel, cleanModel)
	r.MustRegister(TypeCreateView, createView)
	r.MustRegister(TypeAddModelToView, addModelToView)
	r.MustRegister(TypeRemoveModelFromView, removeModelFromView)
	r.MustRegister(TypeDeleteModelsFromView, deleteModelsFromView)
	r.MustRegister(TypeCreateSharedModel, createSharedModel)
	r.MustRegister(TypeTriangulateManualOption, triangulateManualOption)
	r.MustRegister(TypeTinFunction, tinFunction)
	r.MustRegister(TypeIfFunctionExists, ifFunctionExists)
	r.MustRegister(TypeRunFunction, runFunction)
	r.MustRegister(TypeAddComment, addComment)
	r.MustRegister(TypeAddLabel, addLabel)
	r.MustRegister(TypeRenameModel, renameModel)
	r.MustRegister(TypeApplyAttrManipulators, applyAttrManipulators)
	r.MustRegister(TypeCreateTemplateFile, templateFile{})
	r.MustRegister(TypeCreateAttrManipulators, attrFiles{})
	r.MustRegister(TypeRunChain, runChain)
	r.MustRegister(TypeCreateTrimeshFromTin, createTrimeshFromTin)
	r.MustRegister(TypeVolumeTinToTin, volumeTinToTin)
	r.MustRegister(TypeGetTotalSurfaceArea, getTotalSurfaceArea)
	r.MustRegister(TypeTrimeshVolumeReport, trimeshVolumeReport)
	r.MustRegister(TypeCreateMtfFile, mtfFile{})
	r.MustRegister(TypeApplyMtf, applyMtf)
	r.MustRegister(TypeLabel, addLabel)
}
