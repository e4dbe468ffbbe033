package ast

// Visitor is the traversal contract for consumers that walk the tree
// without a type switch. Each node's Accept calls the matching method.
type Visitor interface {
	VisitProgram(node *Program)

	// Statements
	VisitVariableDeclaration(node *VariableDeclaration)
	VisitAssignment(node *Assignment)
	VisitBlock(node *Block)
	VisitIf(node *If)
	VisitWhile(node *While)
	VisitFor(node *For)
	VisitPrint(node *Print)
	VisitReturn(node *Return)
	VisitFunctionDeclaration(node *FunctionDeclaration)
	VisitStruct(node *Struct)

	// Expressions
	VisitLiteral(node *Literal)
	VisitIdentifier(node *Identifier)
	VisitArrayIndexIdentifier(node *ArrayIndexIdentifier)
	VisitArrayLiteral(node *ArrayLiteral)
	VisitBinaryOperator(node *BinaryOperator)
	VisitUnaryOperator(node *UnaryOperator)
	VisitFunctionCall(node *FunctionCall)
	VisitStructVariableSelector(node *StructVariableSelector)
	VisitStructFunctionSelector(node *StructFunctionSelector)
}
