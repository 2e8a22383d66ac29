// Package fuzztests houses Go fuzz harnesses for the Lisle front end
// (source -> lexer -> parser -> linker) and the binary image codec. The goal
// is to catch panics, hangs and rendering drift on arbitrary input.
//
// Назначение: прогонять произвольные байты через лексер, сборку программы,
// рендеринг и декодер образов.
//
// Не делает: выполнение программ (бесконечный loop допустим), запись файлов.
package fuzztests
