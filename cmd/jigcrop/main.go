// Command jigcrop crops product photographs taken on a QR-marked jig.
package main

func main() {
	Execute()
}
