package exifdump

import "fmt"

// TagNames maps a tag id to its display name. The tables below are
// static data from the Exif and TIFF/EP standards; they are consumed by
// name resolution, never modified.
type TagNames map[uint16]string

// Name resolves a tag id, falling back to a hexadecimal form like
// "0x0112" for ids not in the table.
func (t TagNames) Name(id uint16) string {
	if name, ok := t[id]; ok {
		return name
	}
	return fmt.Sprintf("0x%04X", id)
}

// TagNamesMain covers IFD0, the thumbnail IFD and the Exif sub-IFD.
var TagNamesMain = TagNames{
	0x100:  "ImageWidth",
	0x101:  "ImageLength",
	0x102:  "BitsPerSample",
	0x103:  "Compression",
	0x106:  "PhotometricInterpretation",
	0x10a:  "FillOrder",
	0x10d:  "DocumentName",
	0x10e:  "ImageDescription",
	0x10f:  "Make",
	0x110:  "Model",
	0x111:  "StripOffsets",
	0x112:  "Orientation",
	0x115:  "SamplesPerPixel",
	0x116:  "RowsPerStrip",
	0x117:  "StripByteCounts",
	0x11a:  "XResolution",
	0x11b:  "YResolution",
	0x11c:  "PlanarConfiguration",
	0x128:  "ResolutionUnit",
	0x12d:  "TransferFunction",
	0x131:  "Software",
	0x132:  "DateTime",
	0x13b:  "Artist",
	0x13e:  "WhitePoint",
	0x13f:  "PrimaryChromaticities",
	0x156:  "TransferRange",
	0x200:  "JPEGProc",
	0x201:  "JPEGInterchangeFormat",
	0x202:  "JPEGInterchangeFormatLength",
	0x211:  "YCbCrCoefficients",
	0x212:  "YCbCrSubSampling",
	0x213:  "YCbCrPositioning",
	0x214:  "ReferenceBlackWhite",
	0x828f: "BatteryLevel",
	0x8298: "Copyright",
	0x829a: "ExposureTime",
	0x829d: "FNumber",
	0x83bb: "IPTC/NAA",
	0x8769: "ExifIFDPointer",
	0x8773: "InterColorProfile",
	0x8822: "ExposureProgram",
	0x8824: "SpectralSensitivity",
	0x8825: "GPSInfoIFDPointer",
	0x8827: "ISOSpeedRatings",
	0x8828: "OECF",
	0x9000: "ExifVersion",
	0x9003: "DateTimeOriginal",
	0x9004: "DateTimeDigitized",
	0x9101: "ComponentsConfiguration",
	0x9102: "CompressedBitsPerPixel",
	0x9201: "ShutterSpeedValue",
	0x9202: "ApertureValue",
	0x9203: "BrightnessValue",
	0x9204: "ExposureBiasValue",
	0x9205: "MaxApertureValue",
	0x9206: "SubjectDistance",
	0x9207: "MeteringMode",
	0x9208: "LightSource",
	0x9209: "Flash",
	0x920a: "FocalLength",
	0x9214: "SubjectArea",
	0x927c: "MakerNote",
	0x9286: "UserComment",
	0x9290: "SubSecTime",
	0x9291: "SubSecTimeOriginal",
	0x9292: "SubSecTimeDigitized",
	0xa000: "FlashPixVersion",
	0xa001: "ColorSpace",
	0xa002: "PixelXDimension",
	0xa003: "PixelYDimension",
	0xa004: "RelatedSoundFile",
	0xa005: "InteroperabilityIFDPointer",
	0xa20b: "FlashEnergy",               // 0x920b in TIFF/EP
	0xa20c: "SpatialFrequencyResponse",  // 0x920c in TIFF/EP
	0xa20e: "FocalPlaneXResolution",     // 0x920e in TIFF/EP
	0xa20f: "FocalPlaneYResolution",     // 0x920f in TIFF/EP
	0xa210: "FocalPlaneResolutionUnit",  // 0x9210 in TIFF/EP
	0xa214: "SubjectLocation",           // 0x9214 in TIFF/EP
	0xa215: "ExposureIndex",             // 0x9215 in TIFF/EP
	0xa217: "SensingMethod",             // 0x9217 in TIFF/EP
	0xa300: "FileSource",
	0xa301: "SceneType",
	0xa302: "CFAPattern", // 0x828e in TIFF/EP
	0xa401: "CustomRendered",
	0xa402: "ExposureMode",
	0xa403: "WhiteBalance",
	0xa404: "DigitalZoomRatio",
	0xa405: "FocalLengthIn35mmFilm",
	0xa406: "SceneCaptureType",
	0xa407: "GainControl",
	0xa408: "Contrast",
	0xa409: "Saturation",
	0xa40a: "Sharpness",
	0xa40b: "DeviceSettingDescription",
	0xa40c: "SubjectDistanceRange",
	0xa420: "ImageUniqueID",
}

// TagNamesInterop covers the Interoperability sub-IFD.
var TagNamesInterop = TagNames{
	0x1:    "InteroperabilityIndex",
	0x2:    "InteroperabilityVersion",
	0x1000: "RelatedImageFileFormat",
	0x1001: "RelatedImageWidth",
	0x1002: "RelatedImageLength",
}

// TagNamesGPS covers the GPS sub-IFD.
var TagNamesGPS = TagNames{
	0x0:  "GPSVersionID",
	0x1:  "GPSLatitudeRef",
	0x2:  "GPSLatitude",
	0x3:  "GPSLongitudeRef",
	0x4:  "GPSLongitude",
	0x5:  "GPSAltitudeRef",
	0x6:  "GPSAltitude",
	0x7:  "GPSTimeStamp",
	0x8:  "GPSSatellites",
	0x9:  "GPSStatus",
	0xa:  "GPSMeasureMode",
	0xb:  "GPSDOP",
	0xc:  "GPSSpeedRef",
	0xd:  "GPSSpeed",
	0xe:  "GPSTrackRef",
	0xf:  "GPSTrack",
	0x10: "GPSImgDirectionRef",
	0x11: "GPSImgDirection",
	0x12: "GPSMapDatum",
	0x13: "GPSDestLatitudeRef",
	0x14: "GPSDestLatitude",
	0x15: "GPSDestLongitudeRef",
	0x16: "GPSDestLongitude",
	0x17: "GPSDestBearingRef",
	0x18: "GPSDestBearing",
	0x19: "GPSDestDistanceRef",
	0x1a: "GPSDestDistance",
	0x1b: "GPSProcessingMethod",
	0x1c: "GPSAreaInformation",
	0x1d: "GPSDateStamp",
	0x1e: "GPSDifferential",
}
